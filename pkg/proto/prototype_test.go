package proto

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/chazu/luadis/pkg/opcode"
)

func TestAddConstantDeduplicates(t *testing.T) {
	p := New("@test.lua")

	a := p.AddConstant(String("x"))
	b := p.AddConstant(Int(1))
	c := p.AddConstant(String("x"))
	d := p.AddConstant(Float(1))

	if a != c {
		t.Errorf("duplicate string got index %d, want %d", c, a)
	}
	if b == d {
		t.Error("integer 1 and float 1.0 must stay distinct")
	}
	if len(p.Constants) != 3 {
		t.Errorf("pool size = %d, want 3", len(p.Constants))
	}
}

func TestStringConstantLengthClass(t *testing.T) {
	if k := String("short"); k.Tag != TagShortStr {
		t.Errorf("short string tag = %s", k.Tag)
	}
	long := string(bytes.Repeat([]byte("x"), MaxShortLen+1))
	if k := String(long); k.Tag != TagLongStr {
		t.Errorf("long string tag = %s", k.Tag)
	}
	if !String(long).IsString() || Int(3).IsString() {
		t.Error("IsString wrong")
	}
}

func TestConstantAccessors(t *testing.T) {
	p := New("=stdin")
	p.AddConstant(Bool(true))
	p.Upvalues = []Upvalue{{Name: "_ENV", InStack: true}}

	if k, ok := p.Constant(0); !ok || k.Tag != TagTrue {
		t.Errorf("Constant(0) = %v, %v", k, ok)
	}
	if _, ok := p.Constant(1); ok {
		t.Error("Constant(1) should be out of range")
	}
	if name, ok := p.UpvalueName(0); !ok || name != "_ENV" {
		t.Errorf("UpvalueName(0) = %q, %v", name, ok)
	}
	if _, ok := p.UpvalueName(-1); ok {
		t.Error("UpvalueName(-1) should be out of range")
	}
}

func TestWalkOrder(t *testing.T) {
	root := &Prototype{Source: "root"}
	a := &Prototype{Source: "a", LineDefined: 1}
	a1 := &Prototype{Source: "a1", LineDefined: 2}
	b := &Prototype{Source: "b", LineDefined: 5}
	a.AddProto(a1)
	root.AddProto(a)
	root.AddProto(b)

	var order []string
	root.Walk(func(p *Prototype) bool {
		order = append(order, p.Source)
		return true
	})
	if diff := cmp.Diff([]string{"root", "a", "a1", "b"}, order); diff != "" {
		t.Errorf("walk order (-want +got):\n%s", diff)
	}

	order = nil
	root.Walk(func(p *Prototype) bool {
		order = append(order, p.Source)
		return p.Source != "a"
	})
	if diff := cmp.Diff([]string{"root", "a", "b"}, order); diff != "" {
		t.Errorf("pruned walk order (-want +got):\n%s", diff)
	}
}

func TestIsMain(t *testing.T) {
	if !(&Prototype{}).IsMain() {
		t.Error("LineDefined 0 should be main")
	}
	if (&Prototype{LineDefined: 3}).IsMain() {
		t.Error("LineDefined 3 should not be main")
	}
}

func TestLineWithoutInfo(t *testing.T) {
	p := New("@x.lua")
	p.Emit(opcode.ABCk(opcode.RETURN0, 0, 0, 0, 0))
	if got := p.Line(0); got != -1 {
		t.Errorf("Line(0) without info = %d, want -1", got)
	}
}

func TestSetLinesRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		first int
		lines []int
	}{
		{"small deltas", 0, []int{1, 1, 2, 3, 3, 2}},
		{"big forward jump", 10, []int{11, 400, 401}},
		{"big backward jump", 0, []int{500, 2, 3}},
		{"delta at the limit", 0, []int{127, 127 + 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prototype{LineDefined: tt.first}
			p.SetLines(tt.lines)
			for pc, want := range tt.lines {
				if got := p.Line(pc); got != want {
					t.Errorf("Line(%d) = %d, want %d", pc, got, want)
				}
			}
		})
	}
}

func TestSetLinesLongRunGetsAnchors(t *testing.T) {
	lines := make([]int, 300)
	for i := range lines {
		lines[i] = 1 + i/3
	}
	p := &Prototype{}
	p.SetLines(lines)

	if len(p.AbsLineInfo) != 2 {
		t.Fatalf("abs anchors = %d, want 2", len(p.AbsLineInfo))
	}
	if p.AbsLineInfo[0].PC != 128 || p.LineInfo[128] != AbsLineMarker {
		t.Errorf("first anchor = %+v, marker = %d", p.AbsLineInfo[0], p.LineInfo[128])
	}
	for pc, want := range lines {
		if got := p.Line(pc); got != want {
			t.Fatalf("Line(%d) = %d, want %d", pc, got, want)
		}
	}
}

func sampleTree() *Prototype {
	main := New("@sample.lua")
	main.IsVararg = true
	main.MaxStackSize = 2
	k := main.AddConstant(String("hi\n"))
	main.AddConstant(Float(2.5))
	main.AddConstant(Int(-7))
	main.AddConstant(Nil())
	main.AddConstant(Bool(false))
	main.Emit(opcode.ABCk(opcode.VARARGPREP, 0, 0, 0, 0))
	main.Emit(opcode.ABx(opcode.LOADK, 0, k))
	main.Emit(opcode.ABx(opcode.CLOSURE, 1, 0))
	main.Emit(opcode.ABCk(opcode.RETURN, 0, 1, 1, 0))
	main.SetLines([]int{1, 1, 3, 3})
	main.Upvalues = []Upvalue{{Name: "_ENV", InStack: true, Index: 0}}

	child := &Prototype{Source: "@sample.lua", LineDefined: 2, LastLineDefined: 3, NumParams: 1, MaxStackSize: 2}
	child.Emit(opcode.ABCk(opcode.RETURN1, 0, 0, 0, 0))
	child.LocVars = []LocVar{{Name: "x", StartPC: 0, EndPC: 1}}
	main.AddProto(child)
	return main
}

func TestSnapshotRoundTrip(t *testing.T) {
	main := sampleTree()

	data, err := MarshalSnapshot(main)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot: %v", err)
	}
	if diff := cmp.Diff(main, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsDeterministic(t *testing.T) {
	a, err := Fingerprint(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Fingerprint(sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("equal trees produced different fingerprints")
	}

	other := sampleTree()
	other.Protos[0].LineDefined = 9
	c, err := Fingerprint(other)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, c) {
		t.Error("different trees produced equal fingerprints")
	}
}

func TestSnapshotPreservesSpecialFloats(t *testing.T) {
	negNaN := math.Float64frombits(0xfff8000000000001)
	values := []float64{math.Inf(-1), math.Inf(1), 0.1, 0, math.Copysign(0, -1), math.NaN(), negNaN}

	p := New("=x")
	for _, f := range values {
		p.Constants = append(p.Constants, Float(f))
	}
	data, err := MarshalSnapshot(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Constants) != len(values) {
		t.Fatalf("got %d constants, want %d", len(got.Constants), len(values))
	}
	for i, f := range values {
		k := got.Constants[i]
		if k.Tag != TagFloat {
			t.Errorf("constant %d tag = %s", i, k.Tag)
		}
		if math.Float64bits(k.Float) != math.Float64bits(f) {
			t.Errorf("constant %d = %#016x, want %#016x", i, math.Float64bits(k.Float), math.Float64bits(f))
		}
	}
}

func TestSignedZeroStaysDistinct(t *testing.T) {
	negZero := math.Copysign(0, -1)

	p := New("=x")
	a := p.AddConstant(Float(0))
	b := p.AddConstant(Float(negZero))
	if a == b {
		t.Fatal("0.0 and -0.0 share a constant slot")
	}
	if c := p.AddConstant(Float(negZero)); c != b {
		t.Errorf("repeated -0.0 got index %d, want %d", c, b)
	}

	pos := New("=x")
	pos.AddConstant(Float(0))
	neg := New("=x")
	neg.AddConstant(Float(negZero))
	fa, err := Fingerprint(pos)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := Fingerprint(neg)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(fa, fb) {
		t.Error("0.0 and -0.0 prototypes have the same fingerprint")
	}
}

func TestUnmarshalSnapshotErrors(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for garbage input")
	}
	if _, err := MarshalSnapshot(nil); err == nil {
		t.Error("expected error for nil prototype")
	}
	data, err := cborEncMode.Marshal(Snapshot{Version: 99, Main: New("=x")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := UnmarshalSnapshot(data); err == nil {
		t.Error("expected error for unknown version")
	}
}

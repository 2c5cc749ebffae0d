package listing

import (
	"math"
	"testing"

	"github.com/chazu/luadis/pkg/opcode"
	"github.com/chazu/luadis/pkg/proto"
)

func TestQuoteStringEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"hi", `"hi"`},
		{`"`, `"\""`},
		{`\`, `"\\"`},
		{"\a", `"\a"`},
		{"\b", `"\b"`},
		{"\f", `"\f"`},
		{"\n", `"\n"`},
		{"\r", `"\r"`},
		{"\t", `"\t"`},
		{"\v", `"\v"`},
		{"~", `"~"`},
		{"\x00", `"\000"`},
		{"\x1b", `"\027"`},
		{"\x7f", `"\127"`},
		{"\xff", `"\255"`},
		{"a\x00b", `"a\000b"`},
		{"é", `"\195\169"`},
	}

	for _, tt := range tests {
		if got := QuoteString(tt.in); got != tt.want {
			t.Errorf("QuoteString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		f      float64
		digits int
		want   string
	}{
		{2, LuacFloatDigits, "2.0"},
		{-3, LuacFloatDigits, "-3.0"},
		{0, LuacFloatDigits, "0.0"},
		{0.5, LuacFloatDigits, "0.5"},
		{0.1, LuacFloatDigits, "0.1"},
		{0.1, 0, "0.1"},
		{1.0 / 3, LuacFloatDigits, "0.33333333333333"},
		{1.0 / 3, 0, "0.3333333333333333"},
		{1e100, LuacFloatDigits, "1e+100"},
		{123456789012345678, LuacFloatDigits, "1.2345678901235e+17"},
		{math.Inf(1), LuacFloatDigits, "inf"},
		{math.Inf(-1), 0, "-inf"},
		{math.NaN(), LuacFloatDigits, "nan"},
		{math.Copysign(math.NaN(), -1), LuacFloatDigits, "-nan"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.f, tt.digits); got != tt.want {
			t.Errorf("FormatFloat(%v, %d) = %q, want %q", tt.f, tt.digits, got, tt.want)
		}
	}
}

func TestFormatConstantAndTypeTag(t *testing.T) {
	tests := []struct {
		k     proto.Constant
		tag   string
		value string
	}{
		{proto.Nil(), "N", "nil"},
		{proto.Bool(false), "B", "false"},
		{proto.Bool(true), "B", "true"},
		{proto.Int(-42), "I", "-42"},
		{proto.Int(math.MinInt64), "I", "-9223372036854775808"},
		{proto.Float(2), "F", "2.0"},
		{proto.Float(2.5), "F", "2.5"},
		{proto.String("hi\n"), "S", `"hi\n"`},
		{proto.Constant{Tag: 0x55}, "?85", "?85"},
	}

	for _, tt := range tests {
		if got := TypeTag(tt.k); got != tt.tag {
			t.Errorf("TypeTag(%v) = %q, want %q", tt.k, got, tt.tag)
		}
		if got := FormatConstant(tt.k, LuacFloatDigits); got != tt.value {
			t.Errorf("FormatConstant(%v) = %q, want %q", tt.k, got, tt.value)
		}
	}

	if ValidTag(0x55) {
		t.Error("ValidTag(0x55) should be false")
	}
	if !ValidTag(proto.TagLongStr) {
		t.Error("ValidTag(long string) should be true")
	}
}

func TestDerivedTargets(t *testing.T) {
	if got := JumpTarget(0, 3); got != 5 {
		t.Errorf("JumpTarget(0, 3) = %d, want 5", got)
	}
	if got := JumpTarget(4, -5); got != 1 {
		t.Errorf("JumpTarget(4, -5) = %d, want 1", got)
	}
	if got := ForLoopTarget(6, 3); got != 5 {
		t.Errorf("ForLoopTarget(6, 3) = %d, want 5", got)
	}
	if got := ForPrepTarget(2, 3); got != 8 {
		t.Errorf("ForPrepTarget(2, 3) = %d, want 8", got)
	}
	if got := TForPrepTarget(2, 3); got != 7 {
		t.Errorf("TForPrepTarget(2, 3) = %d, want 7", got)
	}
	if got := TForLoopTarget(7, 4); got != 5 {
		t.Errorf("TForLoopTarget(7, 4) = %d, want 5", got)
	}
	if got := ExtendedCount(3, 2); got != 3+2*(opcode.MaxArgC+1) {
		t.Errorf("ExtendedCount(3, 2) = %d", got)
	}
}

func TestArity(t *testing.T) {
	if n, all := Arity(0); !all || n != 0 {
		t.Errorf("Arity(0) = %d, %v", n, all)
	}
	if n, all := Arity(3); all || n != 2 {
		t.Errorf("Arity(3) = %d, %v", n, all)
	}
	if got := arityText(0, "in"); got != "all in" {
		t.Errorf("arityText(0) = %q", got)
	}
	if got := arityText(1, "out"); got != "0 out" {
		t.Errorf("arityText(1) = %q", got)
	}
}

func TestEventName(t *testing.T) {
	tests := map[int]string{
		0:  "__index",
		6:  "__add",
		7:  "__sub",
		17: "__shr",
		24: "__close",
		25: "?25",
		-1: "?-1",
	}
	for c, want := range tests {
		if got := EventName(c); got != want {
			t.Errorf("EventName(%d) = %q, want %q", c, got, want)
		}
	}
}

func TestParseIdentity(t *testing.T) {
	for _, id := range []Identity{IdentityContent, IdentitySequence, IdentityNone} {
		got, err := ParseIdentity(id.String())
		if err != nil || got != id {
			t.Errorf("ParseIdentity(%q) = %v, %v", id.String(), got, err)
		}
	}
	if got, err := ParseIdentity(""); err != nil || got != IdentityContent {
		t.Errorf("ParseIdentity(\"\") = %v, %v", got, err)
	}
	if _, err := ParseIdentity("address"); err == nil {
		t.Error("ParseIdentity(address) should fail")
	}
}

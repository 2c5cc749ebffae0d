package proto

import "github.com/chazu/luadis/pkg/opcode"

// Source name markers. The first byte of Prototype.Source says where the
// chunk came from.
const (
	SourceFile    = '@'    // loaded from a named file
	SourceLiteral = '='    // loaded with a literal display name
	SourceBinary  = '\x1b' // loaded from a precompiled chunk
)

// Upvalue describes a variable captured from an enclosing function.
type Upvalue struct {
	Name    string `cbor:"1,keyasint,omitempty"` // Empty when debug info was stripped
	InStack bool   `cbor:"2,keyasint,omitempty"` // Captured from the enclosing stack frame
	Index   uint8  `cbor:"3,keyasint"`           // Register or upvalue index in the enclosing function
	Kind    uint8  `cbor:"4,keyasint,omitempty"` // Variable kind (regular, const, to-be-closed)
}

// LocVar is the live range of a local variable. StartPC is the first
// instruction where the variable is active, EndPC the first where it is dead.
type LocVar struct {
	Name    string `cbor:"1,keyasint"`
	StartPC int    `cbor:"2,keyasint"`
	EndPC   int    `cbor:"3,keyasint"`
}

// AbsLineInfo anchors the compressed line table at an absolute line.
type AbsLineInfo struct {
	PC   int `cbor:"1,keyasint"`
	Line int `cbor:"2,keyasint"`
}

// Prototype is the compiled form of one function. Nested prototypes are
// owned by their parent and form an acyclic tree.
type Prototype struct {
	Source          string `cbor:"1,keyasint,omitempty"`
	LineDefined     int    `cbor:"2,keyasint"`
	LastLineDefined int    `cbor:"3,keyasint"`
	NumParams       uint8  `cbor:"4,keyasint"`
	IsVararg        bool   `cbor:"5,keyasint,omitempty"`
	MaxStackSize    uint8  `cbor:"6,keyasint"`

	Code      []opcode.Instruction `cbor:"7,keyasint"`
	Constants []Constant           `cbor:"8,keyasint,omitempty"`
	Upvalues  []Upvalue            `cbor:"9,keyasint,omitempty"`
	Protos    []*Prototype         `cbor:"10,keyasint,omitempty"`

	// Debug information, absent when stripped.
	LineInfo    []int8        `cbor:"11,keyasint,omitempty"`
	AbsLineInfo []AbsLineInfo `cbor:"12,keyasint,omitempty"`
	LocVars     []LocVar      `cbor:"13,keyasint,omitempty"`
}

// New creates an empty prototype for the given source name.
func New(source string) *Prototype {
	return &Prototype{
		Source: source,
		Code:   make([]opcode.Instruction, 0, 16),
	}
}

// IsMain reports whether this is the top-level function of a chunk.
func (p *Prototype) IsMain() bool {
	return p.LineDefined == 0
}

// Emit appends an instruction and returns its index.
func (p *Prototype) Emit(i opcode.Instruction) int {
	p.Code = append(p.Code, i)
	return len(p.Code) - 1
}

// AddConstant adds a constant to the pool and returns its index.
// If an identical constant already exists, returns the existing index.
func (p *Prototype) AddConstant(k Constant) int {
	key := k.key()
	for i, c := range p.Constants {
		if c.key() == key {
			return i
		}
	}
	p.Constants = append(p.Constants, k)
	return len(p.Constants) - 1
}

// AddProto appends a nested prototype and returns its index.
func (p *Prototype) AddProto(child *Prototype) int {
	p.Protos = append(p.Protos, child)
	return len(p.Protos) - 1
}

// Constant returns the constant at idx, or false if idx is out of range.
func (p *Prototype) Constant(idx int) (Constant, bool) {
	if idx < 0 || idx >= len(p.Constants) {
		return Constant{}, false
	}
	return p.Constants[idx], true
}

// UpvalueName returns the declared name of upvalue idx. The second
// result is false if idx is out of range.
func (p *Prototype) UpvalueName(idx int) (string, bool) {
	if idx < 0 || idx >= len(p.Upvalues) {
		return "", false
	}
	return p.Upvalues[idx].Name, true
}

// Walk visits p and every nested prototype depth-first, parents before
// children, children in declaration order. Returning false from fn skips
// the subtree below that prototype.
func (p *Prototype) Walk(fn func(*Prototype) bool) {
	if !fn(p) {
		return
	}
	for _, child := range p.Protos {
		child.Walk(fn)
	}
}

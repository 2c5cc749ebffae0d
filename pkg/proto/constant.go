package proto

import (
	"fmt"
	"math"
)

// Tag identifies the variant of a constant. Values match the Lua 5.4
// type-variant tags used in binary chunks.
type Tag uint8

const (
	TagNil      Tag = 0x00
	TagFalse    Tag = 0x01
	TagTrue     Tag = 0x11
	TagInt      Tag = 0x03
	TagFloat    Tag = 0x13
	TagShortStr Tag = 0x04
	TagLongStr  Tag = 0x14
)

// MaxShortLen is the longest string stored as a short string.
const MaxShortLen = 40

// String returns a human-readable name for the tag.
func (t Tag) String() string {
	switch t {
	case TagNil:
		return "nil"
	case TagFalse:
		return "false"
	case TagTrue:
		return "true"
	case TagInt:
		return "integer"
	case TagFloat:
		return "float"
	case TagShortStr:
		return "shortstring"
	case TagLongStr:
		return "longstring"
	default:
		return fmt.Sprintf("Tag(%#02x)", uint8(t))
	}
}

// Constant is one entry of a prototype's constant pool. Only the payload
// field selected by Tag is meaningful.
type Constant struct {
	Tag   Tag     `cbor:"1,keyasint"`
	Int   int64   `cbor:"2,keyasint,omitempty"`
	Float float64 `cbor:"3,keyasint"`
	Str   string  `cbor:"4,keyasint,omitempty"`
}

func Nil() Constant { return Constant{Tag: TagNil} }

func Bool(b bool) Constant {
	if b {
		return Constant{Tag: TagTrue}
	}
	return Constant{Tag: TagFalse}
}

func Int(i int64) Constant { return Constant{Tag: TagInt, Int: i} }

func Float(f float64) Constant { return Constant{Tag: TagFloat, Float: f} }

// String returns a string constant, short or long by length.
func String(s string) Constant {
	if len(s) <= MaxShortLen {
		return Constant{Tag: TagShortStr, Str: s}
	}
	return Constant{Tag: TagLongStr, Str: s}
}

// IsString reports whether the constant holds a string of either length class.
func (k Constant) IsString() bool {
	return k.Tag == TagShortStr || k.Tag == TagLongStr
}

// key returns a comparable identity used for pool deduplication.
// Floats and integers with equal numeric value stay distinct, and floats
// compare by bit pattern so 0.0 and -0.0 get separate slots.
func (k Constant) key() Constant {
	switch {
	case k.IsString():
		return Constant{Tag: TagShortStr, Str: k.Str}
	case k.Tag == TagFloat:
		return Constant{Tag: TagFloat, Int: int64(math.Float64bits(k.Float))}
	}
	return k
}

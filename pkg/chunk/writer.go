package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/chazu/luadis/pkg/proto"
)

// Dump writes p as a precompiled chunk. With strip set, source names,
// line tables, local variables and upvalue names are omitted.
func Dump(w io.Writer, p *proto.Prototype, strip bool) error {
	if p == nil {
		return fmt.Errorf("chunk: dump nil prototype")
	}
	wr := &writer{strip: strip}
	wr.header()
	wr.putByte(byte(len(p.Upvalues)))
	wr.function(p, "")
	if _, err := w.Write(wr.buf.Bytes()); err != nil {
		return fmt.Errorf("chunk: write: %w", err)
	}
	return nil
}

type writer struct {
	buf   bytes.Buffer
	strip bool
}

func (wr *writer) putByte(b byte) { wr.buf.WriteByte(b) }

func (wr *writer) putUnsigned(x uint64) {
	var tmp [10]byte
	n := len(tmp) - 1
	tmp[n] = byte(x&0x7f) | 0x80
	for x >>= 7; x != 0; x >>= 7 {
		n--
		tmp[n] = byte(x & 0x7f)
	}
	wr.buf.Write(tmp[n:])
}

func (wr *writer) putInt(n int) { wr.putUnsigned(uint64(n)) }

func (wr *writer) putInteger(i int64) {
	wr.buf.Write(binary.LittleEndian.AppendUint64(nil, uint64(i)))
}

func (wr *writer) putNumber(f float64) {
	wr.buf.Write(binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)))
}

func (wr *writer) putString(s string) {
	wr.putUnsigned(uint64(len(s)) + 1)
	wr.buf.WriteString(s)
}

func (wr *writer) putAbsent() { wr.putUnsigned(0) }

func (wr *writer) header() {
	wr.buf.WriteString(Signature)
	wr.putByte(Version)
	wr.putByte(Format)
	wr.buf.WriteString(Data)
	wr.putByte(InstructionSize)
	wr.putByte(IntegerSize)
	wr.putByte(NumberSize)
	wr.putInteger(CheckInt)
	wr.putNumber(CheckFloat)
}

func (wr *writer) function(p *proto.Prototype, parentSource string) {
	if wr.strip || p.Source == parentSource {
		wr.putAbsent()
	} else {
		wr.putString(p.Source)
	}
	wr.putInt(p.LineDefined)
	wr.putInt(p.LastLineDefined)
	wr.putByte(p.NumParams)
	if p.IsVararg {
		wr.putByte(1)
	} else {
		wr.putByte(0)
	}
	wr.putByte(p.MaxStackSize)

	wr.putInt(len(p.Code))
	for _, i := range p.Code {
		wr.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(i)))
	}

	wr.putInt(len(p.Constants))
	for _, k := range p.Constants {
		wr.putByte(byte(k.Tag))
		switch k.Tag {
		case proto.TagFloat:
			wr.putNumber(k.Float)
		case proto.TagInt:
			wr.putInteger(k.Int)
		case proto.TagShortStr, proto.TagLongStr:
			wr.putString(k.Str)
		}
	}

	wr.putInt(len(p.Upvalues))
	for _, u := range p.Upvalues {
		if u.InStack {
			wr.putByte(1)
		} else {
			wr.putByte(0)
		}
		wr.putByte(u.Index)
		wr.putByte(u.Kind)
	}

	wr.putInt(len(p.Protos))
	for _, child := range p.Protos {
		wr.function(child, p.Source)
	}

	wr.debug(p)
}

func (wr *writer) debug(p *proto.Prototype) {
	if wr.strip {
		for i := 0; i < 4; i++ {
			wr.putInt(0)
		}
		return
	}

	wr.putInt(len(p.LineInfo))
	for _, d := range p.LineInfo {
		wr.putByte(byte(d))
	}
	wr.putInt(len(p.AbsLineInfo))
	for _, abs := range p.AbsLineInfo {
		wr.putInt(abs.PC)
		wr.putInt(abs.Line)
	}
	wr.putInt(len(p.LocVars))
	for _, v := range p.LocVars {
		wr.putString(v.Name)
		wr.putInt(v.StartPC)
		wr.putInt(v.EndPC)
	}
	wr.putInt(len(p.Upvalues))
	for _, u := range p.Upvalues {
		wr.putString(u.Name)
	}
}

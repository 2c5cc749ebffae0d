package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tliron/commonlog"

	"github.com/chazu/luadis/pkg/opcode"
	"github.com/chazu/luadis/pkg/proto"
)

// maxInt bounds every count and size read from a chunk.
const maxInt = math.MaxInt32

// Undump reads a precompiled chunk and returns its main prototype.
func Undump(r io.Reader) (*proto.Prototype, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chunk: read: %w", err)
	}
	return UndumpBytes(data)
}

// UndumpBytes decodes a precompiled chunk held in memory.
func UndumpBytes(data []byte) (*proto.Prototype, error) {
	rd := &reader{data: data, log: commonlog.GetLogger("luadis.chunk")}
	if err := rd.checkHeader(); err != nil {
		return nil, err
	}
	nup, err := rd.readByte()
	if err != nil {
		return nil, err
	}
	main, err := rd.readFunction("")
	if err != nil {
		return nil, err
	}
	if int(nup) != len(main.Upvalues) {
		rd.log.Warningf("main function declares %d upvalues, closure has %d", len(main.Upvalues), nup)
	}
	if rd.offset != len(rd.data) {
		rd.log.Warningf("%d trailing bytes after chunk", len(rd.data)-rd.offset)
	}
	return main, nil
}

type reader struct {
	data   []byte
	offset int
	log    commonlog.Logger
}

func (rd *reader) truncated(what string) error {
	return fmt.Errorf("chunk: %s at offset %d: %w", what, rd.offset, ErrTruncated)
}

func (rd *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || rd.offset+n > len(rd.data) {
		return nil, rd.truncated(fmt.Sprintf("need %d bytes", n))
	}
	b := rd.data[rd.offset : rd.offset+n]
	rd.offset += n
	return b, nil
}

func (rd *reader) readByte() (byte, error) {
	b, err := rd.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readUnsigned decodes a varint: 7 bits per byte, most significant group
// first, the final byte flagged with 0x80.
func (rd *reader) readUnsigned(limit uint64) (uint64, error) {
	var x uint64
	limit >>= 7
	for {
		b, err := rd.readByte()
		if err != nil {
			return 0, err
		}
		if x >= limit {
			return 0, fmt.Errorf("chunk: integer overflow at offset %d: %w", rd.offset, ErrFormat)
		}
		x = x<<7 | uint64(b&0x7f)
		if b&0x80 != 0 {
			return x, nil
		}
	}
}

func (rd *reader) readInt() (int, error) {
	x, err := rd.readUnsigned(maxInt)
	return int(x), err
}

// readCount reads an element count. Every element takes at least one
// byte, so a count beyond the remaining input is a truncation.
func (rd *reader) readCount() (int, error) {
	n, err := rd.readInt()
	if err != nil {
		return 0, err
	}
	if n > len(rd.data)-rd.offset {
		return 0, rd.truncated(fmt.Sprintf("count %d", n))
	}
	return n, nil
}

func (rd *reader) readInteger() (int64, error) {
	b, err := rd.readBytes(IntegerSize)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func (rd *reader) readNumber() (float64, error) {
	b, err := rd.readBytes(NumberSize)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// readString returns the string and false for the absent string, which
// is encoded as size 0.
func (rd *reader) readString() (string, bool, error) {
	n, err := rd.readUnsigned(math.MaxInt)
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", false, nil
	}
	b, err := rd.readBytes(int(n - 1))
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (rd *reader) checkHeader() error {
	if !IsBinary(rd.data) {
		return ErrNotChunk
	}
	rd.offset = len(Signature)

	v, err := rd.readByte()
	if err != nil {
		return err
	}
	if v != Version {
		return fmt.Errorf("%w: expected %#x, got %#x", ErrVersion, Version, v)
	}
	f, err := rd.readByte()
	if err != nil {
		return err
	}
	if f != Format {
		return fmt.Errorf("%w: format %d", ErrFormat, f)
	}
	d, err := rd.readBytes(len(Data))
	if err != nil {
		return err
	}
	if string(d) != Data {
		return fmt.Errorf("%w: corrupted header data", ErrFormat)
	}

	for _, size := range []struct {
		what string
		want byte
	}{
		{"Instruction", InstructionSize},
		{"lua_Integer", IntegerSize},
		{"lua_Number", NumberSize},
	} {
		got, err := rd.readByte()
		if err != nil {
			return err
		}
		if got != size.want {
			return fmt.Errorf("%w: %s size %d, expected %d", ErrFormat, size.what, got, size.want)
		}
	}

	i, err := rd.readInteger()
	if err != nil {
		return err
	}
	if i != CheckInt {
		return fmt.Errorf("%w: integer format mismatch", ErrFormat)
	}
	n, err := rd.readNumber()
	if err != nil {
		return err
	}
	if n != CheckFloat {
		return fmt.Errorf("%w: float format mismatch", ErrFormat)
	}
	return nil
}

func (rd *reader) readFunction(parentSource string) (*proto.Prototype, error) {
	source, ok, err := rd.readString()
	if err != nil {
		return nil, err
	}
	if !ok {
		source = parentSource
	}
	p := &proto.Prototype{Source: source}

	if p.LineDefined, err = rd.readInt(); err != nil {
		return nil, err
	}
	if p.LastLineDefined, err = rd.readInt(); err != nil {
		return nil, err
	}
	hdr, err := rd.readBytes(3)
	if err != nil {
		return nil, err
	}
	p.NumParams, p.IsVararg, p.MaxStackSize = hdr[0], hdr[1] != 0, hdr[2]

	if err := rd.readCode(p); err != nil {
		return nil, err
	}
	if err := rd.readConstants(p); err != nil {
		return nil, err
	}
	if err := rd.readUpvalues(p); err != nil {
		return nil, err
	}
	if err := rd.readProtos(p); err != nil {
		return nil, err
	}
	if err := rd.readDebug(p); err != nil {
		return nil, err
	}

	rd.log.Debugf("loaded function %s:%d (%d instructions, %d constants, %d functions)",
		p.Source, p.LineDefined, len(p.Code), len(p.Constants), len(p.Protos))
	return p, nil
}

func (rd *reader) readCode(p *proto.Prototype) error {
	n, err := rd.readInt()
	if err != nil {
		return err
	}
	b, err := rd.readBytes(n * InstructionSize)
	if err != nil {
		return err
	}
	p.Code = make([]opcode.Instruction, n)
	for i := range p.Code {
		p.Code[i] = opcode.Instruction(binary.LittleEndian.Uint32(b[i*InstructionSize:]))
	}
	return nil
}

func (rd *reader) readConstants(p *proto.Prototype) error {
	n, err := rd.readCount()
	if err != nil {
		return err
	}
	p.Constants = make([]proto.Constant, n)
	for i := range p.Constants {
		t, err := rd.readByte()
		if err != nil {
			return err
		}
		k := proto.Constant{Tag: proto.Tag(t)}
		switch k.Tag {
		case proto.TagNil, proto.TagFalse, proto.TagTrue:
		case proto.TagFloat:
			k.Float, err = rd.readNumber()
		case proto.TagInt:
			k.Int, err = rd.readInteger()
		case proto.TagShortStr, proto.TagLongStr:
			var ok bool
			k.Str, ok, err = rd.readString()
			if err == nil && !ok {
				err = fmt.Errorf("chunk: constant %d: absent string: %w", i, ErrFormat)
			}
		default:
			err = fmt.Errorf("chunk: constant %d: unknown tag %#x: %w", i, t, ErrFormat)
		}
		if err != nil {
			return err
		}
		p.Constants[i] = k
	}
	return nil
}

func (rd *reader) readUpvalues(p *proto.Prototype) error {
	n, err := rd.readInt()
	if err != nil {
		return err
	}
	b, err := rd.readBytes(n * 3)
	if err != nil {
		return err
	}
	p.Upvalues = make([]proto.Upvalue, n)
	for i := range p.Upvalues {
		p.Upvalues[i] = proto.Upvalue{
			InStack: b[3*i] != 0,
			Index:   b[3*i+1],
			Kind:    b[3*i+2],
		}
	}
	return nil
}

func (rd *reader) readProtos(p *proto.Prototype) error {
	n, err := rd.readCount()
	if err != nil {
		return err
	}
	p.Protos = make([]*proto.Prototype, n)
	for i := range p.Protos {
		if p.Protos[i], err = rd.readFunction(p.Source); err != nil {
			return err
		}
	}
	return nil
}

func (rd *reader) readDebug(p *proto.Prototype) error {
	n, err := rd.readInt()
	if err != nil {
		return err
	}
	b, err := rd.readBytes(n)
	if err != nil {
		return err
	}
	if n > 0 {
		p.LineInfo = make([]int8, n)
		for i, d := range b {
			p.LineInfo[i] = int8(d)
		}
	}

	if n, err = rd.readInt(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var abs proto.AbsLineInfo
		if abs.PC, err = rd.readInt(); err != nil {
			return err
		}
		if abs.Line, err = rd.readInt(); err != nil {
			return err
		}
		p.AbsLineInfo = append(p.AbsLineInfo, abs)
	}

	if n, err = rd.readInt(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		var v proto.LocVar
		if v.Name, _, err = rd.readString(); err != nil {
			return err
		}
		if v.StartPC, err = rd.readInt(); err != nil {
			return err
		}
		if v.EndPC, err = rd.readInt(); err != nil {
			return err
		}
		p.LocVars = append(p.LocVars, v)
	}

	if n, err = rd.readInt(); err != nil {
		return err
	}
	if n != 0 && n != len(p.Upvalues) {
		return fmt.Errorf("chunk: %d upvalue names for %d upvalues: %w", n, len(p.Upvalues), ErrFormat)
	}
	for i := 0; i < n; i++ {
		if p.Upvalues[i].Name, _, err = rd.readString(); err != nil {
			return err
		}
	}
	return nil
}

package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/luadis/pkg/opcode"
	"github.com/chazu/luadis/pkg/proto"
)

// FormatInstruction returns the listing line for instruction pc of f,
// without the trailing newline. Malformed operands render as
// placeholders; use a Printer with Options.Strict to reject them.
// A pc outside f's code yields a line holding only the position and "?".
func FormatInstruction(f *proto.Prototype, pc int, opts Options) string {
	if f == nil || pc < 0 || pc >= len(f.Code) {
		return fmt.Sprintf("\t%d\t[-]\t?", pc+1)
	}
	p := NewPrinter(nil, opts)
	return p.instruction(f, pc)
}

// instruction renders one code line.
func (p *Printer) instruction(f *proto.Prototype, pc int) string {
	fl := f.Code[pc].Decode()

	var sb strings.Builder
	fmt.Fprintf(&sb, "\t%d\t", pc+1)
	if line := f.Line(pc); line > 0 {
		fmt.Fprintf(&sb, "[%d]\t", line)
	} else {
		sb.WriteString("[-]\t")
	}
	fmt.Fprintf(&sb, "%-9s\t", fl.Op)

	if !fl.Op.Valid() {
		p.malformed(f, "instruction %d: unknown opcode %d", pc+1, uint8(fl.Op))
		fmt.Fprintf(&sb, "%d %d %d\t; not handled", fl.A, fl.B, fl.C)
		return sb.String()
	}

	sh := shapes[fl.Op]
	for n, o := range sh.operands {
		if n > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(o.value(fl)))
	}
	if sh.kSuffix && fl.K != 0 {
		sb.WriteByte('k')
	}
	if c := p.comment(f, pc, sh.comment, fl); c != "" {
		sb.WriteString("\t; ")
		sb.WriteString(c)
	}
	return sb.String()
}

// comment produces the derived annotation for one instruction.
func (p *Printer) comment(f *proto.Prototype, pc int, kind commentKind, fl opcode.Fields) string {
	isk := fl.K != 0
	switch kind {
	case noComment:
		return ""
	case commentConstBx:
		return p.constant(f, fl.Bx)
	case commentConstAx:
		extra, ok := extraArg(f, pc)
		if !ok {
			p.malformed(f, "instruction %d: %s without EXTRAARG", pc+1, fl.Op)
		}
		return p.constant(f, extra)
	case commentNilCount:
		return strconv.Itoa(fl.B+1) + " out"
	case commentUpvalB:
		return p.upvalue(f, fl.B)
	case commentGetTabUp:
		return p.upvalue(f, fl.B) + " " + p.constant(f, fl.C)
	case commentConstC:
		return p.constant(f, fl.C)
	case commentSetTabUp:
		s := p.upvalue(f, fl.A) + " " + p.constant(f, fl.B)
		if isk {
			s += " " + p.constant(f, fl.C)
		}
		return s
	case commentConstCIfK:
		if isk {
			return p.constant(f, fl.C)
		}
		return ""
	case commentSetField:
		s := p.constant(f, fl.B)
		if isk {
			s += " " + p.constant(f, fl.C)
		}
		return s
	case commentNewTable:
		extra, _ := extraArg(f, pc)
		return strconv.Itoa(ExtendedCount(fl.C, extra))
	case commentEvent:
		return p.event(f, fl.C)
	case commentEventImm:
		return p.event(f, fl.C) + flip(isk)
	case commentEventK:
		return p.event(f, fl.C) + " " + p.constant(f, fl.B) + flip(isk)
	case commentJump:
		return "to " + strconv.Itoa(JumpTarget(pc, fl.SJ))
	case commentConstB:
		return p.constant(f, fl.B)
	case commentCall:
		return arityText(fl.B, "in") + " " + arityText(fl.C, "out")
	case commentTailCall:
		return arityText(fl.B, "in")
	case commentReturn:
		return arityText(fl.B, "out")
	case commentForLoop:
		return "to " + strconv.Itoa(ForLoopTarget(pc, fl.Bx))
	case commentForPrep:
		return "exit to " + strconv.Itoa(ForPrepTarget(pc, fl.Bx))
	case commentTForPrep:
		return "to " + strconv.Itoa(TForPrepTarget(pc, fl.Bx))
	case commentTForLoop:
		return "to " + strconv.Itoa(TForLoopTarget(pc, fl.Bx))
	case commentSetList:
		if !isk {
			return ""
		}
		extra, ok := extraArg(f, pc)
		if !ok {
			p.malformed(f, "instruction %d: %s without EXTRAARG", pc+1, fl.Op)
		}
		return strconv.Itoa(ExtendedCount(fl.C, extra))
	case commentClosure:
		return p.closure(f, fl.Bx)
	case commentVararg:
		return arityText(fl.C, "out")
	default:
		panic(fmt.Sprintf("listing: comment kind %d not handled", kind))
	}
}

func flip(isk bool) string {
	if isk {
		return " flip"
	}
	return ""
}

// extraArg returns the Ax of the EXTRAARG word following pc. The second
// result is false if there is no such word.
func extraArg(f *proto.Prototype, pc int) (int, bool) {
	if pc+1 >= len(f.Code) {
		return 0, false
	}
	next := f.Code[pc+1]
	if next.Opcode() != opcode.EXTRAARG {
		return 0, false
	}
	return next.Ax(), true
}

// constant renders constant idx of f.
func (p *Printer) constant(f *proto.Prototype, idx int) string {
	k, ok := f.Constant(idx)
	if !ok {
		p.malformed(f, "constant index %d out of range (%d constants)", idx, len(f.Constants))
		return fmt.Sprintf("?%d", idx)
	}
	if !ValidTag(k.Tag) {
		p.malformed(f, "constant %d has unknown tag %d", idx, uint8(k.Tag))
	}
	return FormatConstant(k, p.opts.FloatDigits)
}

// upvalue renders the name of upvalue idx, "-" if it has none.
func (p *Printer) upvalue(f *proto.Prototype, idx int) string {
	name, ok := f.UpvalueName(idx)
	if !ok {
		p.malformed(f, "upvalue index %d out of range (%d upvalues)", idx, len(f.Upvalues))
		return fmt.Sprintf("?%d", idx)
	}
	return upvalueName(name)
}

func upvalueName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func (p *Printer) event(f *proto.Prototype, c int) string {
	if c >= len(eventNames) {
		p.malformed(f, "event %d out of range", c)
	}
	return EventName(c)
}

// closure renders the identity of nested prototype idx.
func (p *Printer) closure(f *proto.Prototype, idx int) string {
	if idx < 0 || idx >= len(f.Protos) {
		p.malformed(f, "prototype index %d out of range (%d functions)", idx, len(f.Protos))
		return fmt.Sprintf("?%d", idx)
	}
	return p.token(f.Protos[idx])
}

package listing

import (
	"fmt"

	"github.com/chazu/luadis/pkg/opcode"
)

// operand names one printed field of an instruction.
type operand uint8

const (
	opA operand = iota
	opB
	opC
	opSB
	opSC
	opBx
	opSBx
	opAx
	opSJ
	opK // the k flag printed as 0 or 1
)

func (o operand) value(f opcode.Fields) int {
	switch o {
	case opA:
		return f.A
	case opB:
		return f.B
	case opC:
		return f.C
	case opSB:
		return f.SB
	case opSC:
		return f.SC
	case opBx:
		return f.Bx
	case opSBx:
		return f.SBx
	case opAx:
		return f.Ax
	case opSJ:
		return f.SJ
	case opK:
		return f.K
	default:
		panic(fmt.Sprintf("listing: bad operand %d", o))
	}
}

// commentKind selects the function producing an instruction's comment.
type commentKind uint8

const (
	noComment commentKind = iota

	commentConstBx   // K[Bx]
	commentConstAx   // K[extra Ax]
	commentNilCount  // B+1 registers cleared
	commentUpvalB    // upvalue name B
	commentGetTabUp  // upvalue name B, K[C]
	commentConstC    // K[C]
	commentSetTabUp  // upvalue name A, K[B], K[C] if k
	commentConstCIfK // K[C] if k
	commentSetField  // K[B], K[C] if k
	commentNewTable  // C + extra
	commentEvent     // event C
	commentEventImm  // event C, flip if k
	commentEventK    // event C, K[B], flip if k
	commentJump      // absolute target of sJ
	commentConstB    // K[B]
	commentCall      // B in, C out
	commentTailCall  // B in
	commentReturn    // B out
	commentForLoop   // loop-back target
	commentForPrep   // exit target
	commentTForPrep  // forward target
	commentTForLoop  // loop-back target
	commentSetList   // C + extra if k
	commentClosure   // identity of nested prototype Bx
	commentVararg    // C out
)

// shape describes how one opcode is printed.
type shape struct {
	operands []operand
	kSuffix  bool // append "k" to the last operand when the k flag is set
	comment  commentKind
}

var (
	ops0    = []operand{}
	opsA    = []operand{opA}
	opsAB   = []operand{opA, opB}
	opsAC   = []operand{opA, opC}
	opsABC  = []operand{opA, opB, opC}
	opsABk  = []operand{opA, opB, opK}
	opsAk   = []operand{opA, opK}
	opsABx  = []operand{opA, opBx}
	opsAsBx = []operand{opA, opSBx}
	opsABsC = []operand{opA, opB, opSC}
	opsAsBk = []operand{opA, opSB, opK}
)

// shapes is indexed by opcode and covers the whole instruction set.
var shapes = [opcode.NumOpcodes]shape{
	opcode.MOVE:       {opsAB, false, noComment},
	opcode.LOADI:      {opsAsBx, false, noComment},
	opcode.LOADF:      {opsAsBx, false, noComment},
	opcode.LOADK:      {opsABx, false, commentConstBx},
	opcode.LOADKX:     {opsA, false, commentConstAx},
	opcode.LOADFALSE:  {opsA, false, noComment},
	opcode.LFALSESKIP: {opsA, false, noComment},
	opcode.LOADTRUE:   {opsA, false, noComment},
	opcode.LOADNIL:    {opsAB, false, commentNilCount},

	opcode.GETUPVAL: {opsAB, false, commentUpvalB},
	opcode.SETUPVAL: {opsAB, false, commentUpvalB},
	opcode.GETTABUP: {opsABC, false, commentGetTabUp},
	opcode.GETTABLE: {opsABC, false, noComment},
	opcode.GETI:     {opsABC, false, noComment},
	opcode.GETFIELD: {opsABC, false, commentConstC},
	opcode.SETTABUP: {opsABC, true, commentSetTabUp},
	opcode.SETTABLE: {opsABC, true, commentConstCIfK},
	opcode.SETI:     {opsABC, true, commentConstCIfK},
	opcode.SETFIELD: {opsABC, true, commentSetField},
	opcode.NEWTABLE: {opsABC, false, commentNewTable},
	opcode.SELF:     {opsABC, true, commentConstCIfK},

	opcode.ADDI:  {opsABsC, false, noComment},
	opcode.ADDK:  {opsABC, false, commentConstC},
	opcode.SUBK:  {opsABC, false, commentConstC},
	opcode.MULK:  {opsABC, false, commentConstC},
	opcode.MODK:  {opsABC, false, commentConstC},
	opcode.POWK:  {opsABC, false, commentConstC},
	opcode.DIVK:  {opsABC, false, commentConstC},
	opcode.IDIVK: {opsABC, false, commentConstC},
	opcode.BANDK: {opsABC, false, commentConstC},
	opcode.BORK:  {opsABC, false, commentConstC},
	opcode.BXORK: {opsABC, false, commentConstC},
	opcode.SHRI:  {opsABsC, false, noComment},
	opcode.SHLI:  {opsABsC, false, noComment},

	opcode.ADD:  {opsABC, false, noComment},
	opcode.SUB:  {opsABC, false, noComment},
	opcode.MUL:  {opsABC, false, noComment},
	opcode.MOD:  {opsABC, false, noComment},
	opcode.POW:  {opsABC, false, noComment},
	opcode.DIV:  {opsABC, false, noComment},
	opcode.IDIV: {opsABC, false, noComment},
	opcode.BAND: {opsABC, false, noComment},
	opcode.BOR:  {opsABC, false, noComment},
	opcode.BXOR: {opsABC, false, noComment},
	opcode.SHL:  {opsABC, false, noComment},
	opcode.SHR:  {opsABC, false, noComment},

	opcode.MMBIN:  {opsABC, false, commentEvent},
	opcode.MMBINI: {[]operand{opA, opSB, opC, opK}, false, commentEventImm},
	opcode.MMBINK: {[]operand{opA, opB, opC, opK}, false, commentEventK},

	opcode.UNM:    {opsAB, false, noComment},
	opcode.BNOT:   {opsAB, false, noComment},
	opcode.NOT:    {opsAB, false, noComment},
	opcode.LEN:    {opsAB, false, noComment},
	opcode.CONCAT: {opsAB, false, noComment},

	opcode.CLOSE:   {opsA, false, noComment},
	opcode.TBC:     {opsA, false, noComment},
	opcode.JMP:     {[]operand{opSJ}, false, commentJump},
	opcode.EQ:      {opsABk, false, noComment},
	opcode.LT:      {opsABk, false, noComment},
	opcode.LE:      {opsABk, false, noComment},
	opcode.EQK:     {opsABk, false, commentConstB},
	opcode.EQI:     {opsAsBk, false, noComment},
	opcode.LTI:     {opsAsBk, false, noComment},
	opcode.LEI:     {opsAsBk, false, noComment},
	opcode.GTI:     {opsAsBk, false, noComment},
	opcode.GEI:     {opsAsBk, false, noComment},
	opcode.TEST:    {opsAk, false, noComment},
	opcode.TESTSET: {opsABk, false, noComment},

	opcode.CALL:     {opsABC, false, commentCall},
	opcode.TAILCALL: {opsABC, true, commentTailCall},
	opcode.RETURN:   {opsABC, true, commentReturn},
	opcode.RETURN0:  {ops0, false, noComment},
	opcode.RETURN1:  {opsA, false, noComment},

	opcode.FORLOOP:  {opsABx, false, commentForLoop},
	opcode.FORPREP:  {opsABx, false, commentForPrep},
	opcode.TFORPREP: {opsABx, false, commentTForPrep},
	opcode.TFORCALL: {opsAC, false, noComment},
	opcode.TFORLOOP: {opsABx, false, commentTForLoop},

	opcode.SETLIST:    {opsABC, false, commentSetList},
	opcode.CLOSURE:    {opsABx, false, commentClosure},
	opcode.VARARG:     {opsAC, false, commentVararg},
	opcode.VARARGPREP: {opsA, false, noComment},
	opcode.EXTRAARG:   {[]operand{opAx}, false, noComment},
}

// eventNames are the metamethod events MMBIN-family instructions name
// in their C operand, in event-number order.
var eventNames = [...]string{
	"__index", "__newindex", "__gc", "__mode", "__len", "__eq",
	"__add", "__sub", "__mul", "__mod", "__pow", "__div", "__idiv",
	"__band", "__bor", "__bxor", "__shl", "__shr",
	"__unm", "__bnot", "__lt", "__le", "__concat", "__call", "__close",
}

// EventName returns the metamethod name for event number c, or "?<c>".
func EventName(c int) string {
	if c < 0 || c >= len(eventNames) {
		return fmt.Sprintf("?%d", c)
	}
	return eventNames[c]
}

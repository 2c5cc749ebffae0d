package opcode

import "fmt"

// Opcode selects the operation of an instruction. It occupies the low
// seven bits of every instruction word.
type Opcode uint8

const (
	// ========================================================================
	// Loads and moves
	// ========================================================================

	MOVE       Opcode = iota // R[A] := R[B]
	LOADI                    // R[A] := sBx
	LOADF                    // R[A] := (float)sBx
	LOADK                    // R[A] := K[Bx]
	LOADKX                   // R[A] := K[extra arg]
	LOADFALSE                // R[A] := false
	LFALSESKIP               // R[A] := false; pc++
	LOADTRUE                 // R[A] := true
	LOADNIL                  // R[A], R[A+1], ..., R[A+B] := nil

	// ========================================================================
	// Upvalues and tables
	// ========================================================================

	GETUPVAL // R[A] := UpValue[B]
	SETUPVAL // UpValue[B] := R[A]
	GETTABUP // R[A] := UpValue[B][K[C]:shortstring]
	GETTABLE // R[A] := R[B][R[C]]
	GETI     // R[A] := R[B][C]
	GETFIELD // R[A] := R[B][K[C]:shortstring]
	SETTABUP // UpValue[A][K[B]:shortstring] := RK(C)
	SETTABLE // R[A][R[B]] := RK(C)
	SETI     // R[A][B] := RK(C)
	SETFIELD // R[A][K[B]:shortstring] := RK(C)
	NEWTABLE // R[A] := {}
	SELF     // R[A+1] := R[B]; R[A] := R[B][RK(C):string]

	// ========================================================================
	// Arithmetic with an immediate or constant operand
	// ========================================================================

	ADDI  // R[A] := R[B] + sC
	ADDK  // R[A] := R[B] + K[C]:number
	SUBK  // R[A] := R[B] - K[C]:number
	MULK  // R[A] := R[B] * K[C]:number
	MODK  // R[A] := R[B] % K[C]:number
	POWK  // R[A] := R[B] ^ K[C]:number
	DIVK  // R[A] := R[B] / K[C]:number
	IDIVK // R[A] := R[B] // K[C]:number
	BANDK // R[A] := R[B] & K[C]:integer
	BORK  // R[A] := R[B] | K[C]:integer
	BXORK // R[A] := R[B] ~ K[C]:integer
	SHRI  // R[A] := R[B] >> sC
	SHLI  // R[A] := sC << R[B]

	// ========================================================================
	// Register arithmetic
	// ========================================================================

	ADD  // R[A] := R[B] + R[C]
	SUB  // R[A] := R[B] - R[C]
	MUL  // R[A] := R[B] * R[C]
	MOD  // R[A] := R[B] % R[C]
	POW  // R[A] := R[B] ^ R[C]
	DIV  // R[A] := R[B] / R[C]
	IDIV // R[A] := R[B] // R[C]
	BAND // R[A] := R[B] & R[C]
	BOR  // R[A] := R[B] | R[C]
	BXOR // R[A] := R[B] ~ R[C]
	SHL  // R[A] := R[B] << R[C]
	SHR  // R[A] := R[B] >> R[C]

	// ========================================================================
	// Metamethod fallbacks
	// ========================================================================

	MMBIN  // call C metamethod over R[A] and R[B]
	MMBINI // call C metamethod over R[A] and sB
	MMBINK // call C metamethod over R[A] and K[B]

	// ========================================================================
	// Unary operations
	// ========================================================================

	UNM    // R[A] := -R[B]
	BNOT   // R[A] := ~R[B]
	NOT    // R[A] := not R[B]
	LEN    // R[A] := #R[B] (length operator)
	CONCAT // R[A] := R[A].. ... ..R[A + B - 1]

	// ========================================================================
	// Control flow and comparisons
	// ========================================================================

	CLOSE   // close all upvalues >= R[A]
	TBC     // mark variable A "to be closed"
	JMP     // pc += sJ
	EQ      // if ((R[A] == R[B]) ~= k) then pc++
	LT      // if ((R[A] <  R[B]) ~= k) then pc++
	LE      // if ((R[A] <= R[B]) ~= k) then pc++
	EQK     // if ((R[A] == K[B]) ~= k) then pc++
	EQI     // if ((R[A] == sB) ~= k) then pc++
	LTI     // if ((R[A] < sB) ~= k) then pc++
	LEI     // if ((R[A] <= sB) ~= k) then pc++
	GTI     // if ((R[A] > sB) ~= k) then pc++
	GEI     // if ((R[A] >= sB) ~= k) then pc++
	TEST    // if (not R[A] == k) then pc++
	TESTSET // if (not R[B] == k) then pc++ else R[A] := R[B]

	// ========================================================================
	// Calls and returns
	// ========================================================================

	CALL     // R[A], ... ,R[A+C-2] := R[A](R[A+1], ... ,R[A+B-1])
	TAILCALL // return R[A](R[A+1], ... ,R[A+B-1])
	RETURN   // return R[A], ... ,R[A+B-2]
	RETURN0  // return
	RETURN1  // return R[A]

	// ========================================================================
	// Loops
	// ========================================================================

	FORLOOP  // update counters; if loop continues then pc-=Bx;
	FORPREP  // <check values and prepare counters>; if not to run then pc+=Bx+1;
	TFORPREP // create upvalue for R[A + 3]; pc+=Bx
	TFORCALL // R[A+4], ... ,R[A+3+C] := R[A](R[A+1], R[A+2]);
	TFORLOOP // if R[A+2] ~= nil then { R[A]=R[A+2]; pc -= Bx }

	// ========================================================================
	// Lists, closures and varargs
	// ========================================================================

	SETLIST    // R[A][C+i] := R[A+i], 1 <= i <= B
	CLOSURE    // R[A] := closure(KPROTO[Bx])
	VARARG     // R[A], R[A+1], ..., R[A+C-2] = vararg
	VARARGPREP // (adjust vararg parameters)
	EXTRAARG   // extra (larger) argument for previous opcode
)

// NumOpcodes is the size of the known instruction set.
const NumOpcodes = int(EXTRAARG) + 1

// Mode is an instruction encoding layout.
type Mode uint8

const (
	IABC  Mode = iota // A:8 k:1 B:8 C:8
	IABx              // A:8 Bx:17
	IAsBx             // A:8 sBx:17
	IAx               // Ax:25
	IsJ               // sJ:25
)

// String returns the conventional layout name.
func (m Mode) String() string {
	switch m {
	case IABC:
		return "iABC"
	case IABx:
		return "iABx"
	case IAsBx:
		return "iAsBx"
	case IAx:
		return "iAx"
	case IsJ:
		return "isJ"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// OpcodeInfo provides metadata about each opcode.
type OpcodeInfo struct {
	Name string // Mnemonic as printed in listings
	Mode Mode   // Encoding layout
	MM   bool   // Instruction is a metamethod fallback
	OT   bool   // Instruction sets L->top for the next instruction (C == 0)
	IT   bool   // Instruction uses L->top set by the previous instruction (B == 0)
	T    bool   // Instruction is a test (next instruction must be a jump)
	A    bool   // Instruction sets register A
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = [NumOpcodes]OpcodeInfo{
	MOVE:       {"MOVE", IABC, false, false, false, false, true},
	LOADI:      {"LOADI", IAsBx, false, false, false, false, true},
	LOADF:      {"LOADF", IAsBx, false, false, false, false, true},
	LOADK:      {"LOADK", IABx, false, false, false, false, true},
	LOADKX:     {"LOADKX", IABx, false, false, false, false, true},
	LOADFALSE:  {"LOADFALSE", IABC, false, false, false, false, true},
	LFALSESKIP: {"LFALSESKIP", IABC, false, false, false, false, true},
	LOADTRUE:   {"LOADTRUE", IABC, false, false, false, false, true},
	LOADNIL:    {"LOADNIL", IABC, false, false, false, false, true},

	GETUPVAL: {"GETUPVAL", IABC, false, false, false, false, true},
	SETUPVAL: {"SETUPVAL", IABC, false, false, false, false, false},
	GETTABUP: {"GETTABUP", IABC, false, false, false, false, true},
	GETTABLE: {"GETTABLE", IABC, false, false, false, false, true},
	GETI:     {"GETI", IABC, false, false, false, false, true},
	GETFIELD: {"GETFIELD", IABC, false, false, false, false, true},
	SETTABUP: {"SETTABUP", IABC, false, false, false, false, false},
	SETTABLE: {"SETTABLE", IABC, false, false, false, false, false},
	SETI:     {"SETI", IABC, false, false, false, false, false},
	SETFIELD: {"SETFIELD", IABC, false, false, false, false, false},
	NEWTABLE: {"NEWTABLE", IABC, false, false, false, false, true},
	SELF:     {"SELF", IABC, false, false, false, false, true},

	ADDI:  {"ADDI", IABC, false, false, false, false, true},
	ADDK:  {"ADDK", IABC, false, false, false, false, true},
	SUBK:  {"SUBK", IABC, false, false, false, false, true},
	MULK:  {"MULK", IABC, false, false, false, false, true},
	MODK:  {"MODK", IABC, false, false, false, false, true},
	POWK:  {"POWK", IABC, false, false, false, false, true},
	DIVK:  {"DIVK", IABC, false, false, false, false, true},
	IDIVK: {"IDIVK", IABC, false, false, false, false, true},
	BANDK: {"BANDK", IABC, false, false, false, false, true},
	BORK:  {"BORK", IABC, false, false, false, false, true},
	BXORK: {"BXORK", IABC, false, false, false, false, true},
	SHRI:  {"SHRI", IABC, false, false, false, false, true},
	SHLI:  {"SHLI", IABC, false, false, false, false, true},

	ADD:  {"ADD", IABC, false, false, false, false, true},
	SUB:  {"SUB", IABC, false, false, false, false, true},
	MUL:  {"MUL", IABC, false, false, false, false, true},
	MOD:  {"MOD", IABC, false, false, false, false, true},
	POW:  {"POW", IABC, false, false, false, false, true},
	DIV:  {"DIV", IABC, false, false, false, false, true},
	IDIV: {"IDIV", IABC, false, false, false, false, true},
	BAND: {"BAND", IABC, false, false, false, false, true},
	BOR:  {"BOR", IABC, false, false, false, false, true},
	BXOR: {"BXOR", IABC, false, false, false, false, true},
	SHL:  {"SHL", IABC, false, false, false, false, true},
	SHR:  {"SHR", IABC, false, false, false, false, true},

	MMBIN:  {"MMBIN", IABC, true, false, false, false, false},
	MMBINI: {"MMBINI", IABC, true, false, false, false, false},
	MMBINK: {"MMBINK", IABC, true, false, false, false, false},

	UNM:    {"UNM", IABC, false, false, false, false, true},
	BNOT:   {"BNOT", IABC, false, false, false, false, true},
	NOT:    {"NOT", IABC, false, false, false, false, true},
	LEN:    {"LEN", IABC, false, false, false, false, true},
	CONCAT: {"CONCAT", IABC, false, false, false, false, true},

	CLOSE:   {"CLOSE", IABC, false, false, false, false, false},
	TBC:     {"TBC", IABC, false, false, false, false, false},
	JMP:     {"JMP", IsJ, false, false, false, false, false},
	EQ:      {"EQ", IABC, false, false, false, true, false},
	LT:      {"LT", IABC, false, false, false, true, false},
	LE:      {"LE", IABC, false, false, false, true, false},
	EQK:     {"EQK", IABC, false, false, false, true, false},
	EQI:     {"EQI", IABC, false, false, false, true, false},
	LTI:     {"LTI", IABC, false, false, false, true, false},
	LEI:     {"LEI", IABC, false, false, false, true, false},
	GTI:     {"GTI", IABC, false, false, false, true, false},
	GEI:     {"GEI", IABC, false, false, false, true, false},
	TEST:    {"TEST", IABC, false, false, false, true, false},
	TESTSET: {"TESTSET", IABC, false, false, false, true, true},

	CALL:     {"CALL", IABC, false, true, true, false, true},
	TAILCALL: {"TAILCALL", IABC, false, true, true, false, true},
	RETURN:   {"RETURN", IABC, false, false, true, false, false},
	RETURN0:  {"RETURN0", IABC, false, false, false, false, false},
	RETURN1:  {"RETURN1", IABC, false, false, false, false, false},

	FORLOOP:  {"FORLOOP", IABx, false, false, false, false, true},
	FORPREP:  {"FORPREP", IABx, false, false, false, false, true},
	TFORPREP: {"TFORPREP", IABx, false, false, false, false, false},
	TFORCALL: {"TFORCALL", IABC, false, false, false, false, false},
	TFORLOOP: {"TFORLOOP", IABx, false, false, false, false, true},

	SETLIST:    {"SETLIST", IABC, false, false, true, false, false},
	CLOSURE:    {"CLOSURE", IABx, false, false, false, false, true},
	VARARG:     {"VARARG", IABC, false, true, false, false, true},
	VARARGPREP: {"VARARGPREP", IABC, false, false, true, false, true},
	EXTRAARG:   {"EXTRAARG", IAx, false, false, false, false, false},
}

// Valid reports whether op belongs to the known instruction set.
func (op Opcode) Valid() bool {
	return int(op) < NumOpcodes
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo named "?<raw>" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if op.Valid() {
		return opcodeInfoTable[op]
	}
	return OpcodeInfo{Name: fmt.Sprintf("?%d", uint8(op))}
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Mode returns the encoding layout used by op.
func (op Opcode) Mode() Mode {
	return GetOpcodeInfo(op).Mode
}

// UsesExtraArg reports whether op may be followed by an EXTRAARG word
// that widens one of its operands.
func (op Opcode) UsesExtraArg() bool {
	switch op {
	case LOADKX, NEWTABLE, SETLIST:
		return true
	}
	return false
}

// IsJump reports whether op transfers control by a relative offset.
func (op Opcode) IsJump() bool {
	switch op {
	case JMP, FORLOOP, FORPREP, TFORPREP, TFORLOOP:
		return true
	}
	return false
}

// AllOpcodes returns every defined opcode in numeric order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, NumOpcodes)
	for i := range ops {
		ops[i] = Opcode(i)
	}
	return ops
}

// Lookup finds an opcode by mnemonic.
func Lookup(name string) (Opcode, bool) {
	for i, info := range opcodeInfoTable {
		if info.Name == name {
			return Opcode(i), true
		}
	}
	return 0, false
}

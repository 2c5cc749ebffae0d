package opcode

// Instruction is a packed 32-bit instruction word.
//
// Field positions, least significant bit first:
//
//	iABC    C(8)  |  B(8)  |k|  A(8)  |  Op(7)
//	iABx       Bx(17)      |  A(8)  |  Op(7)
//	iAsBx     sBx(17)      |  A(8)  |  Op(7)
//	iAx              Ax(25)         |  Op(7)
//	isJ              sJ(25)         |  Op(7)
type Instruction uint32

const (
	SizeOp = 7
	SizeA  = 8
	SizeB  = 8
	SizeC  = 8
	SizeBx = SizeC + SizeB + 1
	SizeAx = SizeBx + SizeA
	SizeSJ = SizeBx + SizeA

	PosOp = 0
	PosA  = PosOp + SizeOp
	PosK  = PosA + SizeA
	PosB  = PosK + 1
	PosC  = PosB + SizeB
	PosBx = PosK
	PosAx = PosA
	PosSJ = PosA
)

const (
	MaxArgA  = 1<<SizeA - 1
	MaxArgB  = 1<<SizeB - 1
	MaxArgC  = 1<<SizeC - 1
	MaxArgBx = 1<<SizeBx - 1
	MaxArgAx = 1<<SizeAx - 1
	MaxArgSJ = 1<<SizeSJ - 1

	// Signed fields are stored with an excess-K bias instead of a sign bit.
	OffsetSC  = MaxArgC >> 1
	OffsetSBx = MaxArgBx >> 1
	OffsetSJ  = MaxArgSJ >> 1
)

func field(i Instruction, pos, size uint) int {
	return int((uint32(i) >> pos) & (1<<size - 1))
}

// Opcode returns the operation selector.
func (i Instruction) Opcode() Opcode {
	return Opcode(field(i, PosOp, SizeOp))
}

func (i Instruction) A() int { return field(i, PosA, SizeA) }
func (i Instruction) B() int { return field(i, PosB, SizeB) }
func (i Instruction) C() int { return field(i, PosC, SizeC) }

// K returns the k flag as 0 or 1.
func (i Instruction) K() int { return field(i, PosK, 1) }

// SB returns B decoded as a signed immediate.
func (i Instruction) SB() int { return i.B() - OffsetSC }

// SC returns C decoded as a signed immediate.
func (i Instruction) SC() int { return i.C() - OffsetSC }

func (i Instruction) Bx() int  { return field(i, PosBx, SizeBx) }
func (i Instruction) SBx() int { return i.Bx() - OffsetSBx }
func (i Instruction) Ax() int  { return field(i, PosAx, SizeAx) }
func (i Instruction) SJ() int  { return field(i, PosSJ, SizeSJ) - OffsetSJ }

// Fields holds every operand view of one instruction word. Which of them
// are meaningful depends on the opcode's Mode.
type Fields struct {
	Op  Opcode
	A   int
	B   int
	C   int
	K   int
	SB  int
	SC  int
	Bx  int
	SBx int
	Ax  int
	SJ  int
}

// Decode extracts the opcode and all operand fields.
func (i Instruction) Decode() Fields {
	return Fields{
		Op:  i.Opcode(),
		A:   i.A(),
		B:   i.B(),
		C:   i.C(),
		K:   i.K(),
		SB:  i.SB(),
		SC:  i.SC(),
		Bx:  i.Bx(),
		SBx: i.SBx(),
		Ax:  i.Ax(),
		SJ:  i.SJ(),
	}
}

// String returns the mnemonic of the instruction's opcode.
func (i Instruction) String() string {
	return i.Opcode().String()
}

func pack(v int, pos, size uint) uint32 {
	return (uint32(v) & (1<<size - 1)) << pos
}

// ABCk encodes an iABC instruction. k is treated as a boolean bit.
func ABCk(op Opcode, a, b, c, k int) Instruction {
	return Instruction(pack(int(op), PosOp, SizeOp) |
		pack(a, PosA, SizeA) |
		pack(k, PosK, 1) |
		pack(b, PosB, SizeB) |
		pack(c, PosC, SizeC))
}

// ABx encodes an iABx instruction.
func ABx(op Opcode, a, bx int) Instruction {
	return Instruction(pack(int(op), PosOp, SizeOp) |
		pack(a, PosA, SizeA) |
		pack(bx, PosBx, SizeBx))
}

// AsBx encodes an iAsBx instruction from a signed offset.
func AsBx(op Opcode, a, sbx int) Instruction {
	return ABx(op, a, sbx+OffsetSBx)
}

// Ax encodes an iAx instruction.
func Ax(op Opcode, ax int) Instruction {
	return Instruction(pack(int(op), PosOp, SizeOp) | pack(ax, PosAx, SizeAx))
}

// SJ encodes an isJ instruction from a signed jump offset.
func SJ(op Opcode, sj int) Instruction {
	return Instruction(pack(int(op), PosOp, SizeOp) | pack(sj+OffsetSJ, PosSJ, SizeSJ))
}

// IntToSC converts a signed immediate into its biased B/C field value.
func IntToSC(v int) int {
	return v + OffsetSC
}

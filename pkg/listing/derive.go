package listing

import (
	"strconv"

	"github.com/chazu/luadis/pkg/opcode"
)

// The helpers below compute derived operand values. Instruction indices
// passed in are zero-based; returned targets are one-based, as printed.

// JumpTarget returns the destination of a JMP at pc with offset sj. The
// offset counts from the instruction after the jump.
func JumpTarget(pc, sj int) int {
	return pc + sj + 2
}

// ForLoopTarget returns where FORLOOP jumps back to while the loop runs.
func ForLoopTarget(pc, bx int) int {
	return pc - bx + 2
}

// ForPrepTarget returns where FORPREP exits to when the loop does not run.
func ForPrepTarget(pc, bx int) int {
	return pc + bx + 3
}

// TForPrepTarget returns the TFORCALL that TFORPREP jumps forward to.
func TForPrepTarget(pc, bx int) int {
	return pc + bx + 2
}

// TForLoopTarget returns where TFORLOOP jumps back to.
func TForLoopTarget(pc, bx int) int {
	return pc - bx + 2
}

// ExtendedCount combines a C operand with the Ax of a following EXTRAARG
// word into one count, as NEWTABLE and SETLIST do.
func ExtendedCount(c, extra int) int {
	return c + extra*(opcode.MaxArgC+1)
}

// Arity decodes a call-style count operand. Zero means "all values up to
// the stack top"; any other n means n-1 values.
func Arity(n int) (count int, all bool) {
	if n == 0 {
		return 0, true
	}
	return n - 1, false
}

// arityText renders an Arity as "all in", "2 out" and so on.
func arityText(n int, dir string) string {
	count, all := Arity(n)
	if all {
		return "all " + dir
	}
	return strconv.Itoa(count) + " " + dir
}

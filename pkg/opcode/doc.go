// Package opcode describes the Lua 5.4 instruction set: the opcode
// enumeration, the per-opcode encoding layout and property flags, and the
// bit-level decoding and encoding of 32-bit instruction words.
//
// Decoding never fails. Every word yields an opcode and a full set of
// operand views (A, B, C, k, sB, sC, Bx, sBx, Ax, sJ); the opcode's Mode
// says which of them carry meaning. Opcodes beyond the known set are
// reported by Valid and print as "?<raw>".
package opcode

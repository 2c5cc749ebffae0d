// Package listing renders Lua 5.4 function prototypes as text, in the
// format of "luac -l" and, with the full flag, "luac -l -l".
//
// A listing has three parts per function: a header summarising the
// prototype, one line per instruction, and (in full mode) dumps of the
// constant pool, the local variable table and the upvalue table. Nested
// functions follow their parent depth-first in declaration order.
//
// Instruction lines look like this:
//
//	1	[3]	LOADK    	0 1	; "hello"
//	2	[4]	JMP      	2	; to 5
//
// The columns are the one-based instruction number, the source line ("-"
// without line info), the mnemonic, the significant operands and an
// optional comment with derived information: constants, upvalue names,
// metamethod names, absolute jump targets and call arities.
//
// # Malformed input
//
// Prototypes are trusted. Opcodes, constant tags or indices outside the
// known range print as "?<raw>" and are reported through the logger.
// With Options.Strict the first such problem aborts the listing with an
// error wrapping ErrMalformed instead.
package listing

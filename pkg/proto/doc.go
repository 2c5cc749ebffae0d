// Package proto defines the in-memory form of a compiled Lua 5.4
// function: its instructions, constant pool, upvalue descriptors, nested
// prototypes and optional debug information.
//
// Prototypes are built upstream (by a compiler, the chunk reader in
// package chunk, or a CBOR snapshot) and treated as read-only by the
// listing printer. Nested prototypes are owned by their parent and form
// an acyclic tree; Walk visits it depth-first in declaration order.
//
// # Line information
//
// Lines are stored the way Lua 5.4 stores them: one signed byte per
// instruction holding the delta from the previous instruction's line,
// plus sparse absolute anchors for large jumps and long runs. SetLines
// builds this encoding from plain line numbers and Line decodes it.
//
// # Snapshots
//
// MarshalSnapshot and UnmarshalSnapshot exchange whole prototype trees as
// canonical CBOR. Canonical encoding makes the bytes a stable content
// fingerprint.
package proto

// Package chunk reads and writes precompiled Lua 5.4 chunks, the files
// luac produces, as proto.Prototype trees.
//
// Only the standard luac layout is accepted: 4-byte instructions,
// 8-byte little-endian integers and IEEE-754 doubles. Errors wrap
// ErrNotChunk, ErrVersion, ErrFormat or ErrTruncated.
package chunk

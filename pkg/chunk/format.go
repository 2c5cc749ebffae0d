package chunk

import "errors"

// Header constants of a Lua 5.4 precompiled chunk.
const (
	Signature = "\x1bLua"
	Version   = 0x54
	Format    = 0
	Data      = "\x19\x93\r\n\x1a\n"

	InstructionSize = 4
	IntegerSize     = 8
	NumberSize      = 8

	CheckInt   int64   = 0x5678
	CheckFloat float64 = 370.5
)

var (
	ErrNotChunk  = errors.New("not a precompiled Lua chunk")
	ErrVersion   = errors.New("chunk version mismatch")
	ErrFormat    = errors.New("chunk format mismatch")
	ErrTruncated = errors.New("truncated chunk")
)

// IsBinary reports whether data starts with the precompiled-chunk
// signature.
func IsBinary(data []byte) bool {
	return len(data) >= len(Signature) && string(data[:len(Signature)]) == Signature
}

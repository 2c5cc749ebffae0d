package chunk

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/luadis/pkg/listing"
)

// helloChunk is the output of `luac -o - hi.lua` (Lua 5.4) for a file
// holding `print("hi")`.
var helloChunk = []byte{
	// header
	0x1b, 'L', 'u', 'a', 0x54, 0x00,
	0x19, 0x93, '\r', '\n', 0x1a, '\n',
	0x04, 0x08, 0x08,
	0x78, 0x56, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x28, 0x77, 0x40,
	// main closure upvalues
	0x01,

	// main function
	0x88, '@', 'h', 'i', '.', 'l', 'u', 'a',
	// linedefined, lastlinedefined, numparams, is_vararg, maxstacksize
	0x80, 0x80, 0x00, 0x01, 0x02,

	0x85,
	0x51, 0x00, 0x00, 0x00, // VARARGPREP 0
	0x0b, 0x00, 0x00, 0x00, // GETTABUP 0 0 0
	0x83, 0x80, 0x00, 0x00, // LOADK 1 1
	0x44, 0x00, 0x02, 0x01, // CALL 0 2 1
	0x46, 0x00, 0x01, 0x01, // RETURN 0 1 1

	0x82,
	0x04, 0x86, 'p', 'r', 'i', 'n', 't',
	0x04, 0x83, 'h', 'i',

	// upvalues, then no nested functions
	0x81, 0x01, 0x00, 0x00,
	0x80,

	// debug
	0x85, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x80,
	0x80,
	0x81, 0x85, '_', 'E', 'N', 'V',
}

func TestGoldenListing(t *testing.T) {
	p, err := UndumpBytes(helloChunk)
	if err != nil {
		t.Fatalf("UndumpBytes: %v", err)
	}

	tests := []struct {
		name string
		full bool
		want string
	}{
		{"luac -l", false, `
main <hi.lua:0,0> (5 instructions)
0+ params, 2 slots, 1 upvalue, 0 locals, 2 constants, 0 functions
	1	[1]	VARARGPREP	0
	2	[1]	GETTABUP 	0 0 0	; _ENV "print"
	3	[1]	LOADK    	1 1	; "hi"
	4	[1]	CALL     	0 2 1	; 1 in 0 out
	5	[1]	RETURN   	0 1 1	; 0 out
`},
		{"luac -l -l", true, `
main <hi.lua:0,0> (5 instructions)
0+ params, 2 slots, 1 upvalue, 0 locals, 2 constants, 0 functions
	1	[1]	VARARGPREP	0
	2	[1]	GETTABUP 	0 0 0	; _ENV "print"
	3	[1]	LOADK    	1 1	; "hi"
	4	[1]	CALL     	0 2 1	; 1 in 0 out
	5	[1]	RETURN   	0 1 1	; 0 out
constants (2):
	0	S	"print"
	1	S	"hi"
locals (0):
upvalues (1):
	0	_ENV	1	0
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			opts := listing.Options{Full: tt.full, Identity: listing.IdentityNone, FloatDigits: listing.LuacFloatDigits}
			if err := listing.Fprint(&out, p, opts); err != nil {
				t.Fatalf("Fprint: %v", err)
			}
			if diff := cmp.Diff(tt.want, out.String()); diff != "" {
				t.Errorf("listing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGoldenDumpMatchesLuac(t *testing.T) {
	p, err := UndumpBytes(helloChunk)
	if err != nil {
		t.Fatalf("UndumpBytes: %v", err)
	}
	var buf bytes.Buffer
	if err := Dump(&buf, p, false); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), helloChunk) {
		t.Errorf("Dump differs from luac output:\ngot  % x\nwant % x", buf.Bytes(), helloChunk)
	}
}

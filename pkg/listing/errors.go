package listing

import (
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is wrapped by errors reported in strict mode when a
// prototype contains an opcode, tag or index outside the known range.
var ErrMalformed = errors.New("malformed prototype")

// errWriter remembers the first write error so printing code can write
// unconditionally and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

package listing

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/chazu/luadis/pkg/proto"
)

// Options configures a Printer.
type Options struct {
	// Full adds the constant, local and upvalue tables (luac -l -l).
	// Used by Fprint; PrintFunction takes the flag explicitly.
	Full bool

	// Identity selects prototype labels.
	Identity Identity

	// FloatDigits is the significant-digit count for float constants;
	// 0 prints the shortest round-trip form. LuacFloatDigits matches luac.
	FloatDigits int

	// Strict turns malformed-input placeholders into errors.
	Strict bool

	// Logger receives diagnostics. Defaults to the "luadis.listing" logger.
	Logger commonlog.Logger
}

// Printer writes listings of prototypes to an output stream. A Printer
// is not safe for concurrent use; use one Printer per goroutine.
type Printer struct {
	out  *errWriter
	opts Options
	ids  *identifier
	log  commonlog.Logger
	bad  error // first malformed-input error in strict mode
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	log := opts.Logger
	if log == nil {
		log = commonlog.GetLogger("luadis.listing")
	}
	return &Printer{
		out:  &errWriter{w: w},
		opts: opts,
		ids:  newIdentifier(opts.Identity),
		log:  log,
	}
}

// Fprint writes the listing of f and its nested prototypes to w.
func Fprint(w io.Writer, f *proto.Prototype, opts Options) error {
	return NewPrinter(w, opts).PrintFunction(f, opts.Full)
}

// PrintFunction writes the header and code of f, its debug tables when
// full is set, and then the same for every nested prototype in
// declaration order. It returns the first write error, or in strict
// mode the first malformed-input error.
func (p *Printer) PrintFunction(f *proto.Prototype, full bool) error {
	if f == nil {
		return fmt.Errorf("listing: nil prototype")
	}
	p.ids.reset(f)
	p.bad = nil
	p.printFunction(f, full)
	return p.err()
}

func (p *Printer) printFunction(f *proto.Prototype, full bool) {
	p.printHeader(f)
	p.printCode(f)
	if full {
		p.printDebug(f)
	}
	for _, child := range f.Protos {
		if p.err() != nil {
			return
		}
		p.printFunction(child, full)
	}
}

// PrintHeader writes the two summary lines for f.
func (p *Printer) PrintHeader(f *proto.Prototype) error {
	p.printHeader(f)
	return p.err()
}

// PrintCode writes one line per instruction of f.
func (p *Printer) PrintCode(f *proto.Prototype) error {
	p.printCode(f)
	return p.err()
}

// PrintDebug writes the constant, local and upvalue tables of f.
func (p *Printer) PrintDebug(f *proto.Prototype) error {
	p.printDebug(f)
	return p.err()
}

func (p *Printer) printHeader(f *proto.Prototype) {
	kind := "function"
	if f.IsMain() {
		kind = "main"
	}
	n := len(f.Code)
	p.out.printf("\n%s <%s:%d,%d> (%d instruction%s%s)\n",
		kind, SourceName(f.Source), f.LineDefined, f.LastLineDefined,
		n, plural(n), p.suffix(" at ", f))

	vararg := ""
	if f.IsVararg {
		vararg = "+"
	}
	p.out.printf("%d%s param%s, %d slot%s, %d upvalue%s, ",
		f.NumParams, vararg, plural(int(f.NumParams)),
		f.MaxStackSize, plural(int(f.MaxStackSize)),
		len(f.Upvalues), plural(len(f.Upvalues)))
	p.out.printf("%d local%s, %d constant%s, %d function%s\n",
		len(f.LocVars), plural(len(f.LocVars)),
		len(f.Constants), plural(len(f.Constants)),
		len(f.Protos), plural(len(f.Protos)))
}

func (p *Printer) printCode(f *proto.Prototype) {
	for pc := range f.Code {
		if p.err() != nil {
			return
		}
		p.out.write(p.instruction(f, pc))
		p.out.write("\n")
	}
}

func (p *Printer) printDebug(f *proto.Prototype) {
	p.out.printf("constants (%d)%s:\n", len(f.Constants), p.suffix(" for ", f))
	for i, k := range f.Constants {
		if !ValidTag(k.Tag) {
			p.malformed(f, "constant %d has unknown tag %d", i, uint8(k.Tag))
		}
		p.out.printf("\t%d\t%s\t%s\n", i, TypeTag(k), FormatConstant(k, p.opts.FloatDigits))
	}

	p.out.printf("locals (%d)%s:\n", len(f.LocVars), p.suffix(" for ", f))
	for i, v := range f.LocVars {
		p.out.printf("\t%d\t%s\t%d\t%d\n", i, v.Name, v.StartPC+1, v.EndPC+1)
	}

	p.out.printf("upvalues (%d)%s:\n", len(f.Upvalues), p.suffix(" for ", f))
	for i, u := range f.Upvalues {
		instack := 0
		if u.InStack {
			instack = 1
		}
		p.out.printf("\t%d\t%s\t%d\t%d\n", i, upvalueName(u.Name), instack, u.Index)
	}
}

// SourceName derives the display name of a chunk from its source field:
// "@file" and "=name" lose the marker, binary and literal chunks get
// placeholders.
func SourceName(source string) string {
	if source == "" {
		source = "=?"
	}
	switch source[0] {
	case proto.SourceFile, proto.SourceLiteral:
		return source[1:]
	case proto.SourceBinary:
		return "(bstring)"
	default:
		return "(string)"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// token returns the identity label of f, or "" when labels are off.
func (p *Printer) token(f *proto.Prototype) string {
	tok, err := p.ids.token(f)
	if err != nil {
		p.log.Warningf("cannot label prototype %s:%d: %v", SourceName(f.Source), f.LineDefined, err)
		return "?"
	}
	return tok
}

// suffix returns sep followed by the label of f, or "" without labels.
func (p *Printer) suffix(sep string, f *proto.Prototype) string {
	tok := p.token(f)
	if tok == "" {
		return ""
	}
	return sep + tok
}

// malformed reports input outside the known ranges. The placeholder is
// printed regardless; in strict mode the first report becomes the error
// returned by the Print methods.
func (p *Printer) malformed(f *proto.Prototype, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	where := fmt.Sprintf("%s:%d", SourceName(f.Source), f.LineDefined)
	if p.opts.Strict {
		if p.bad == nil {
			p.bad = fmt.Errorf("%s: %s: %w", where, msg, ErrMalformed)
		}
		return
	}
	p.log.Warningf("%s: %s", where, msg)
}

func (p *Printer) err() error {
	if p.out.err != nil {
		return p.out.err
	}
	return p.bad
}

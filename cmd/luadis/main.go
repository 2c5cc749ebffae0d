// luadis lists precompiled Lua 5.4 chunks the way luac -l does.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/luadis/config"
	"github.com/chazu/luadis/pkg/chunk"
	"github.com/chazu/luadis/pkg/listing"
	"github.com/chazu/luadis/pkg/proto"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type flags struct {
	full     bool
	identity string
	strict   bool
	digits   int
	config   string
	dump     bool
	output   string
	verbose  int
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("luadis", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f flags
	fs.BoolVar(&f.full, "full", false, "Also list constants, locals and upvalues (luac -l -l)")
	fs.StringVar(&f.identity, "identity", "", "Prototype labels: content, sequence or none")
	fs.BoolVar(&f.strict, "strict", false, "Fail on malformed prototypes instead of printing placeholders")
	fs.IntVar(&f.digits, "digits", 0, "Significant digits for float constants (0 = shortest, 14 = luac)")
	fs.StringVar(&f.config, "config", "", "Configuration file (default: nearest luadis.toml)")
	fs.BoolVar(&f.dump, "dump", false, "Dump the decoded prototype structure instead of listing it")
	fs.StringVar(&f.output, "o", "", "Write a snapshot of the input to this file")
	fs.IntVar(&f.verbose, "v", 0, "Log verbosity")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: luadis [options] file...\n\n")
		fmt.Fprintf(stderr, "Lists precompiled Lua 5.4 chunks or luadis snapshots. Use - for stdin.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  luadis luac.out                  # List like luac -l\n")
		fmt.Fprintf(stderr, "  luadis -full -digits 14 luac.out # List like luac -l -l\n")
		fmt.Fprintf(stderr, "  luadis -o prog.snap luac.out     # Also save a snapshot\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if f.output != "" && fs.NArg() != 1 {
		fmt.Fprintln(stderr, "luadis: -o needs exactly one input")
		return 2
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		fmt.Fprintf(stderr, "luadis: %v\n", err)
		return 1
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	applyFlags(cfg, &f, set)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "luadis: invalid options: %v\n", err)
		return 2
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())
	log := commonlog.GetLogger("luadis")

	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(stderr, "luadis: %v\n", err)
		return 2
	}

	status := 0
	for _, name := range fs.Args() {
		p, err := load(name, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "luadis: %v\n", err)
			status = 1
			continue
		}
		log.Debugf("loaded %s", name)

		if f.output != "" {
			if err := writeSnapshot(f.output, p); err != nil {
				fmt.Fprintf(stderr, "luadis: %v\n", err)
				return 1
			}
			log.Infof("wrote snapshot %s", f.output)
		}

		if f.dump {
			dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
			dumper.Fdump(stdout, p)
			continue
		}
		if err := listing.Fprint(stdout, p, opts); err != nil {
			fmt.Fprintf(stderr, "luadis: %s: %v\n", name, err)
			status = 1
		}
	}
	return status
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// applyFlags lets explicitly set flags override the configuration file.
func applyFlags(cfg *config.Config, f *flags, set map[string]bool) {
	if set["full"] {
		cfg.Listing.Full = f.full
	}
	if set["identity"] {
		cfg.Listing.Identity = f.identity
	}
	if set["strict"] {
		cfg.Listing.Strict = f.strict
	}
	if set["digits"] {
		cfg.Listing.FloatDigits = f.digits
	}
	if set["v"] {
		cfg.Log.Verbosity = f.verbose
	}
}

// load reads a binary chunk or a snapshot, told apart by the chunk
// signature.
func load(name string, stdin io.Reader) (*proto.Prototype, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}

	var p *proto.Prototype
	if chunk.IsBinary(data) {
		p, err = chunk.UndumpBytes(data)
	} else {
		p, err = proto.UnmarshalSnapshot(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func writeSnapshot(path string, p *proto.Prototype) error {
	data, err := proto.MarshalSnapshot(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

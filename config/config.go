// Package config handles luadis.toml listing configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/luadis/pkg/listing"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "luadis.toml"

// Config represents a luadis.toml file.
type Config struct {
	Listing Listing `toml:"listing" json:"listing"`
	Log     Log     `toml:"log" json:"log"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-" json:"-"`
}

// Listing configures the printer.
type Listing struct {
	Full        bool   `toml:"full" json:"full"`
	Identity    string `toml:"identity" json:"identity"`
	FloatDigits int    `toml:"float-digits" json:"float-digits"`
	Strict      bool   `toml:"strict" json:"strict"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	Path      string `toml:"path" json:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listing: Listing{Identity: listing.IdentityContent.String()},
	}
}

// Load parses luadis.toml from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	// Defaults
	if c.Listing.Identity == "" {
		c.Listing.Identity = listing.IdentityContent.String()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a luadis.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Options converts the listing section into printer options.
func (c *Config) Options() (listing.Options, error) {
	id, err := listing.ParseIdentity(c.Listing.Identity)
	if err != nil {
		return listing.Options{}, err
	}
	return listing.Options{
		Full:        c.Listing.Full,
		Identity:    id,
		FloatDigits: c.Listing.FloatDigits,
		Strict:      c.Listing.Strict,
	}, nil
}

// LogPath returns the log file path for commonlog.Configure, nil for
// stderr.
func (c *Config) LogPath() *string {
	if c.Log.Path == "" {
		return nil
	}
	path := c.Log.Path
	return &path
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/luadis/pkg/listing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[listing]
full = true
identity = "sequence"
float-digits = 14
strict = true

[log]
verbosity = 2
path = "luadis.log"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !c.Listing.Full {
		t.Error("listing full = false, want true")
	}
	if c.Listing.Identity != "sequence" {
		t.Errorf("listing identity = %q, want sequence", c.Listing.Identity)
	}
	if c.Listing.FloatDigits != 14 {
		t.Errorf("listing float-digits = %d, want 14", c.Listing.FloatDigits)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", c.Log.Verbosity)
	}
	if p := c.LogPath(); p == nil || *p != "luadis.log" {
		t.Errorf("log path = %v, want luadis.log", p)
	}
	if c.Path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", c.Path)
	}

	opts, err := c.Options()
	if err != nil {
		t.Fatal(err)
	}
	want := listing.Options{Full: true, Identity: listing.IdentitySequence, FloatDigits: 14, Strict: true}
	if opts != want {
		t.Errorf("options = %+v, want %+v", opts, want)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[listing]\nfull = true\n")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Listing.Identity != "content" {
		t.Errorf("default identity = %q, want content", c.Listing.Identity)
	}
	if c.LogPath() != nil {
		t.Error("default log path should be nil")
	}
	if c.Listing.FloatDigits != 0 {
		t.Errorf("default float-digits = %d, want 0", c.Listing.FloatDigits)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad identity", "[listing]\nidentity = \"address\"\n", "invalid"},
		{"negative digits", "[listing]\nfloat-digits = -1\n", "invalid"},
		{"too many digits", "[listing]\nfloat-digits = 40\n", "invalid"},
		{"unknown key", "[listing]\ncolour = true\n", "unknown key"},
		{"syntax", "[listing\n", "parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[listing]\nidentity = \"none\"\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if c.Listing.Identity != "none" {
		t.Errorf("identity = %q, want none", c.Listing.Identity)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	// A luadis.toml in an ancestor of the temp dir would legitimately be
	// found, so only a loaded-but-pathless result is an error.
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c != nil && c.Path == "" {
		t.Error("loaded config without a path")
	}
}

package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_missingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "release.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() on missing file = %+v, want defaults", cfg)
	}
}

func TestParse_mergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("org: myorg\ndevelop_branch: dev\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Org != "myorg" {
		t.Errorf("Org = %q, want %q", cfg.Org, "myorg")
	}
	if cfg.DevelopBranch != "dev" {
		t.Errorf("DevelopBranch = %q, want %q", cfg.DevelopBranch, "dev")
	}
	if cfg.MainBranch != "main" {
		t.Errorf("MainBranch = %q, want default %q", cfg.MainBranch, "main")
	}
	if cfg.Manifest != "pyproject.toml" {
		t.Errorf("Manifest = %q, want default %q", cfg.Manifest, "pyproject.toml")
	}
}

func TestParse_invalidYAML(t *testing.T) {
	if _, err := Parse([]byte(":::invalid")); err == nil {
		t.Fatal("Parse() should fail on invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		err  bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty org", func(c *Config) { c.Org = "" }, true},
		{"empty develop", func(c *Config) { c.DevelopBranch = "" }, true},
		{"empty main", func(c *Config) { c.MainBranch = "" }, true},
		{"same branches", func(c *Config) { c.DevelopBranch = "main" }, true},
		{"empty manifest", func(c *Config) { c.Manifest = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mut(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.err {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.err)
			}
		})
	}
}

func TestRemoteURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"git@github.com:", "git@github.com:dtcc-platform/sample-lib.git"},
		{"https://github.com/", "https://github.com/dtcc-platform/sample-lib.git"},
		{"/tmp/remotes", "/tmp/remotes/dtcc-platform/sample-lib.git"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			cfg := Default()
			cfg.RemoteBase = tt.base
			if got := cfg.RemoteURL("sample-lib"); got != tt.want {
				t.Errorf("RemoteURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

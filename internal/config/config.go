package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config filename looked up in the working directory.
const DefaultFile = "release.yaml"

// Config holds release defaults that flags may override. It is the
// explicit configuration value handed to the release engine; there are no
// ambient globals.
type Config struct {
	Org           string `yaml:"org,omitempty"`
	RemoteBase    string `yaml:"remote_base,omitempty"`
	DevelopBranch string `yaml:"develop_branch,omitempty"`
	MainBranch    string `yaml:"main_branch,omitempty"`
	Manifest      string `yaml:"manifest,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Org:           "dtcc-platform",
		RemoteBase:    "git@github.com:",
		DevelopBranch: "develop",
		MainBranch:    "main",
		Manifest:      "pyproject.toml",
	}
}

// Load reads a release.yaml file and merges it over the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses release.yaml content and merges it over the defaults.
func Parse(data []byte) (Config, error) {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}
	cfg := Default()
	cfg.merge(file)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Org != "" {
		c.Org = o.Org
	}
	if o.RemoteBase != "" {
		c.RemoteBase = o.RemoteBase
	}
	if o.DevelopBranch != "" {
		c.DevelopBranch = o.DevelopBranch
	}
	if o.MainBranch != "" {
		c.MainBranch = o.MainBranch
	}
	if o.Manifest != "" {
		c.Manifest = o.Manifest
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Org == "" {
		return fmt.Errorf("config: org is required")
	}
	if c.DevelopBranch == "" {
		return fmt.Errorf("config: develop_branch is required")
	}
	if c.MainBranch == "" {
		return fmt.Errorf("config: main_branch is required")
	}
	if c.DevelopBranch == c.MainBranch {
		return fmt.Errorf("config: develop_branch and main_branch must differ (both %q)", c.MainBranch)
	}
	if c.Manifest == "" {
		return fmt.Errorf("config: manifest is required")
	}
	return nil
}

// RemoteURL builds the clone URL for a repository. The remote base may be
// an SSH prefix ("git@github.com:"), an HTTPS prefix, or a local
// filesystem path used by tests and mirrors.
func (c Config) RemoteURL(repo string) string {
	base := c.RemoteBase
	if base != "" && base[len(base)-1] != ':' && base[len(base)-1] != '/' {
		base += "/"
	}
	return base + c.Org + "/" + repo + ".git"
}

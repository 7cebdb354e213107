package manifest

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DefaultName is the manifest filename expected at the repository root.
const DefaultName = "pyproject.toml"

// Manifest mirrors the subset of pyproject.toml that the release flow
// reads back for validation.
type Manifest struct {
	Project Project `toml:"project"`
}

// Project holds the project table of the manifest.
type Project struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Dependencies []string `toml:"dependencies"`
}

// Parse decodes manifest content. Used after textual edits to confirm the
// file is still well-formed TOML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

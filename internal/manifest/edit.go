package manifest

import (
	"fmt"
	"os"
	"regexp"
)

// The version field is treated as opaque text: only the first quoted value
// after a version key is rewritten, never the parsed structure, so
// formatting and comments elsewhere in the file survive untouched.
var versionRe = regexp.MustCompile(`(?m)^(\s*version\s*=\s*)"[^"]*"`)

// Development-source pins look like
//
//	"dtcc-core @ git+https://github.com/dtcc-platform/dtcc-core.git@develop"
//
// and are replaced by the bare package name for published-registry
// resolution. Already-clean entries contain no " @ git+" and are left
// alone, so the substitution is idempotent.
var devPinRe = regexp.MustCompile(`"([A-Za-z0-9][A-Za-z0-9._-]*)\s*@\s*git\+[^"]*"`)

// SetVersion rewrites the first version field in the manifest content to
// the given value. It fails if no version field is present.
func SetVersion(data []byte, version string) ([]byte, error) {
	loc := versionRe.FindSubmatchIndex(data)
	if loc == nil {
		return nil, fmt.Errorf("manifest: no version field found")
	}
	// loc[2]:loc[3] is the key-and-equals prefix; the quoted value ends at loc[1].
	var out []byte
	out = append(out, data[:loc[3]]...)
	out = append(out, fmt.Sprintf("%q", version)...)
	out = append(out, data[loc[1]:]...)
	return out, nil
}

// StripDevPins replaces every development-source dependency pin with its
// bare package name.
func StripDevPins(data []byte) []byte {
	return devPinRe.ReplaceAll(data, []byte(`"$1"`))
}

// SetVersionFile rewrites the version field of the manifest at path and
// verifies the result: the file must still parse as TOML and the version
// field must equal the requested value exactly.
func SetVersionFile(path, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	edited, err := SetVersion(data, version)
	if err != nil {
		return err
	}
	m, err := Parse(edited)
	if err != nil {
		return fmt.Errorf("manifest invalid after version edit: %w", err)
	}
	if m.Project.Version != version {
		return fmt.Errorf("manifest: version is %q after edit, want %q", m.Project.Version, version)
	}
	if err := os.WriteFile(path, edited, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// StripDevPinsFile removes development-source pins from the manifest at
// path. Returns true if the file changed.
func StripDevPinsFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading manifest: %w", err)
	}
	stripped := StripDevPins(data)
	if string(stripped) == string(data) {
		return false, nil
	}
	if _, err := Parse(stripped); err != nil {
		return false, fmt.Errorf("manifest invalid after stripping dev pins: %w", err)
	}
	if err := os.WriteFile(path, stripped, 0644); err != nil {
		return false, fmt.Errorf("writing manifest: %w", err)
	}
	return true, nil
}

// Package manifest edits the version field and dependency pins of a
// pyproject.toml file. Edits are textual so the file's formatting is
// preserved; results are re-parsed as TOML to catch corruption.
package manifest

// Package git provides a wrapper around Git CLI commands used by
// dtcc-release. It handles clone, checkout, commit, tag, push and merge
// operations, and supports a dry-run mode that prints every command
// instead of executing it.
package git

// Package workspace manages the ephemeral working directory for a release
// run: acquisition is directory creation, release is unconditional removal
// regardless of how the run terminates.
package workspace

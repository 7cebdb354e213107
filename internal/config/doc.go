// Package config loads release.yaml, the optional file holding release
// defaults (organization, remote base, branch names, manifest filename).
// Command-line flags override anything set here.
package config

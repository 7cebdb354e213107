// Package release implements the develop-to-main release state machine:
// clone, bump the version on the development branch, tag and push, merge
// into the stable branch with a fixed conflict policy for the manifest,
// strip the dev suffix and development pins, then tag and push the release.
package release

package release

import (
	"fmt"
	"regexp"
	"strings"
)

// Descriptor identifies one release run. Immutable once parsed from the
// command line.
type Descriptor struct {
	Repository string
	Version    string
	Org        string
	DryRun     bool
	Force      bool
}

var versionRe = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+([.-][0-9A-Za-z.-]+)?$`)

// Validate checks the descriptor for usage errors.
func (d Descriptor) Validate() error {
	if d.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if strings.ContainsAny(d.Repository, "/\\") {
		return fmt.Errorf("repository must be a bare name, not a path: %q", d.Repository)
	}
	if d.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !versionRe.MatchString(d.Version) {
		return fmt.Errorf("invalid version %q (expected e.g. 1.2.0)", d.Version)
	}
	if strings.HasSuffix(d.Version, "dev") {
		return fmt.Errorf("version %q must not carry a dev suffix; it is added on the development branch", d.Version)
	}
	return nil
}

// DevVersion is the version written on the development branch.
func (d Descriptor) DevVersion() string {
	return d.Version + "dev"
}

// DevTag is the tag pushed on the development branch.
func (d Descriptor) DevTag() string {
	return "v" + d.DevVersion()
}

// ReleaseTag is the tag pushed on the stable branch.
func (d Descriptor) ReleaseTag() string {
	return "v" + d.Version
}

// State identifies how far the release sequence has progressed. On failure
// the repository is left in whatever state the sequence reached; the tool
// attempts no recovery.
type State string

const (
	StateInitial                 State = "initial"
	StateCloned                  State = "cloned"
	StateDevelopUpdated          State = "develop-updated"
	StateDevVersionCommitted     State = "dev-version-committed"
	StateDevTaggedPushed         State = "dev-tagged-pushed"
	StateMainCheckedOut          State = "main-checked-out"
	StateMerged                  State = "merged"
	StateConflictResolved        State = "conflict-resolved"
	StateReleaseVersionCommitted State = "release-version-committed"
	StateReleaseTaggedPushed     State = "release-tagged-pushed"
)

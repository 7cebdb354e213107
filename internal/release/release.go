package release

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dtcc-platform/dtcc-utils/internal/config"
	"github.com/dtcc-platform/dtcc-utils/internal/git"
	"github.com/dtcc-platform/dtcc-utils/internal/manifest"
)

// Ref describes a ref pushed to the remote during a run.
type Ref struct {
	Name string
	Kind string // "branch" or "tag"
}

// Engine drives the develop-to-main release sequence. It is strictly
// sequential and fail-fast: the first error aborts the run. The two
// tolerated conditions are an empty diff before a commit and a merge
// conflict confined to the manifest file.
type Engine struct {
	desc   Descriptor
	cfg    config.Config
	git    *git.Runner
	dir    string
	log    *log.Logger
	state  State
	pushed []Ref
}

// New builds an engine operating on dir, the repository's clone path
// inside the workspace.
func New(desc Descriptor, cfg config.Config, g *git.Runner, dir string, logger *log.Logger) *Engine {
	return &Engine{desc: desc, cfg: cfg, git: g, dir: dir, log: logger, state: StateInitial}
}

// State reports the last state the sequence reached.
func (e *Engine) State() State { return e.state }

// PushedRefs lists branches and tags pushed during the run, in order.
// In dry-run mode it lists the refs that would have been pushed.
func (e *Engine) PushedRefs() []Ref { return e.pushed }

// Run executes the full release sequence.
func (e *Engine) Run() error {
	if err := e.clone(); err != nil {
		return err
	}
	if err := e.updateDevelop(); err != nil {
		return err
	}
	if err := e.commitDevVersion(); err != nil {
		return err
	}
	if err := e.tagAndPush(e.cfg.DevelopBranch, e.desc.DevTag(), StateDevTaggedPushed); err != nil {
		return err
	}
	if err := e.checkoutMain(); err != nil {
		return err
	}
	if err := e.mergeDevelop(); err != nil {
		return err
	}
	if err := e.commitReleaseVersion(); err != nil {
		return err
	}
	if err := e.tagAndPush(e.cfg.MainBranch, e.desc.ReleaseTag(), StateReleaseTaggedPushed); err != nil {
		return err
	}
	e.log.Info("release complete", "repository", e.desc.Repository, "version", e.desc.Version)
	return nil
}

func (e *Engine) clone() error {
	url := e.cfg.RemoteURL(e.desc.Repository)
	e.log.Info("cloning", "url", url)
	if err := e.git.Clone(url, e.dir); err != nil {
		return err
	}
	e.state = StateCloned
	return nil
}

func (e *Engine) updateDevelop() error {
	e.log.Info("updating development branch", "branch", e.cfg.DevelopBranch)
	if err := e.git.Checkout(e.dir, e.cfg.DevelopBranch); err != nil {
		return fmt.Errorf("checkout %s: %w", e.cfg.DevelopBranch, err)
	}
	if err := e.git.Pull(e.dir); err != nil {
		return fmt.Errorf("pull %s: %w", e.cfg.DevelopBranch, err)
	}
	if err := e.setVersion(e.desc.DevVersion()); err != nil {
		return err
	}
	e.state = StateDevelopUpdated
	return nil
}

func (e *Engine) commitDevVersion() error {
	committed, err := e.commitIfChanged(fmt.Sprintf("Bump version to %s", e.desc.DevVersion()))
	if err != nil {
		return err
	}
	if !committed {
		e.log.Info("no version change on development branch; tagging current head")
	}
	e.state = StateDevVersionCommitted
	return nil
}

func (e *Engine) checkoutMain() error {
	e.log.Info("checking out stable branch", "branch", e.cfg.MainBranch)
	if err := e.git.Checkout(e.dir, e.cfg.MainBranch); err != nil {
		return fmt.Errorf("checkout %s: %w", e.cfg.MainBranch, err)
	}
	if err := e.git.Pull(e.dir); err != nil {
		return fmt.Errorf("pull %s: %w", e.cfg.MainBranch, err)
	}
	e.state = StateMainCheckedOut
	return nil
}

// mergeDevelop merges the development branch into the stable branch. A
// conflict confined to the manifest is resolved in favor of develop's copy
// (fixed non-interactive policy); any other conflicting path is fatal.
func (e *Engine) mergeDevelop() error {
	e.log.Info("merging", "from", e.cfg.DevelopBranch, "into", e.cfg.MainBranch)
	err := e.git.Merge(e.dir, e.cfg.DevelopBranch)
	if err == nil {
		e.state = StateMerged
		return nil
	}
	if !errors.Is(err, git.ErrConflict) {
		return err
	}

	unmerged, uerr := e.git.UnmergedFiles(e.dir)
	if uerr != nil {
		return uerr
	}
	for _, f := range unmerged {
		if f != e.cfg.Manifest {
			return fmt.Errorf("merge conflict in %s; only %s is resolved automatically", f, e.cfg.Manifest)
		}
	}

	e.log.Warn("manifest conflict; taking develop's copy", "file", e.cfg.Manifest)
	if err := e.git.RestoreFrom(e.dir, e.cfg.DevelopBranch, e.cfg.Manifest); err != nil {
		return err
	}
	if err := e.git.CommitMerge(e.dir); err != nil {
		return fmt.Errorf("committing resolved merge: %w", err)
	}
	e.state = StateConflictResolved
	return nil
}

func (e *Engine) commitReleaseVersion() error {
	if err := e.setVersion(e.desc.Version); err != nil {
		return err
	}
	if err := e.stripDevPins(); err != nil {
		return err
	}
	committed, err := e.commitIfChanged(fmt.Sprintf("Release %s", e.desc.Version))
	if err != nil {
		return err
	}
	if !committed {
		e.log.Info("no release changes to commit; tagging current head")
	}
	e.state = StateReleaseVersionCommitted
	return nil
}

// tagAndPush tags the current head and pushes the branch and all tags.
// Without --force an existing tag of the same name aborts the run.
func (e *Engine) tagAndPush(branch, tag string, next State) error {
	if !e.desc.DryRun && !e.desc.Force {
		exists, err := e.git.TagExists(e.dir, tag)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("tag %s already exists (pass --force to move it)", tag)
		}
	}
	e.log.Info("tagging and pushing", "branch", branch, "tag", tag)
	if err := e.git.Tag(e.dir, tag, e.desc.Force); err != nil {
		return fmt.Errorf("tagging %s: %w", tag, err)
	}
	if err := e.git.Push(e.dir, branch); err != nil {
		return fmt.Errorf("pushing %s: %w", branch, err)
	}
	if err := e.git.PushTags(e.dir, e.desc.Force); err != nil {
		return fmt.Errorf("pushing tags: %w", err)
	}
	e.pushed = append(e.pushed, Ref{Name: branch, Kind: "branch"}, Ref{Name: tag, Kind: "tag"})
	e.state = next
	return nil
}

// setVersion rewrites the manifest version field. In dry-run mode there is
// no clone to edit, so the intended edit is reported instead.
func (e *Engine) setVersion(version string) error {
	if e.desc.DryRun {
		e.log.Info("would set manifest version", "file", e.cfg.Manifest, "version", version)
		return nil
	}
	if err := manifest.SetVersionFile(filepath.Join(e.dir, e.cfg.Manifest), version); err != nil {
		return err
	}
	e.log.Debug("manifest version set", "file", e.cfg.Manifest, "version", version)
	return nil
}

func (e *Engine) stripDevPins() error {
	if e.desc.DryRun {
		e.log.Info("would strip development dependency pins", "file", e.cfg.Manifest)
		return nil
	}
	changed, err := manifest.StripDevPinsFile(filepath.Join(e.dir, e.cfg.Manifest))
	if err != nil {
		return err
	}
	if changed {
		e.log.Info("stripped development dependency pins", "file", e.cfg.Manifest)
	}
	return nil
}

// commitIfChanged stages the manifest and commits when the working tree has
// changes. An empty diff is tolerated and reported as committed=false. In
// dry-run mode the tree is assumed changed so the commands are printed.
func (e *Engine) commitIfChanged(message string) (bool, error) {
	if !e.desc.DryRun {
		dirty, err := e.git.IsDirty(e.dir)
		if err != nil {
			return false, fmt.Errorf("checking for local changes: %w", err)
		}
		if !dirty {
			return false, nil
		}
	}
	if err := e.git.Add(e.dir, e.cfg.Manifest); err != nil {
		return false, fmt.Errorf("staging %s: %w", e.cfg.Manifest, err)
	}
	if err := e.git.Commit(e.dir, message); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}

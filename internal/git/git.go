package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrConflict is returned by Merge when the merge stops on conflicting
// paths. Callers inspect UnmergedFiles to decide whether the conflict is
// resolvable.
var ErrConflict = errors.New("merge conflict")

// Runner invokes the git CLI. In dry-run mode every invocation is printed
// to Out instead of executed, so a dry run issues no git commands at all.
type Runner struct {
	DryRun bool
	Out    io.Writer
}

// Clone clones a repository to dest.
func (r *Runner) Clone(url, dest string) error {
	if err := r.run(".", "clone", url, dest); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

// Checkout checks out the given branch.
func (r *Runner) Checkout(dir, branch string) error {
	return r.run(dir, "checkout", branch)
}

// Pull updates the current branch from its upstream.
func (r *Runner) Pull(dir string) error {
	return r.run(dir, "pull")
}

// Add stages the given paths.
func (r *Runner) Add(dir string, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	return r.runQuiet(dir, args...)
}

// Commit creates a commit with the given message.
// If user.name or user.email is not configured, repo-local fallback values
// are set first so the commit does not fail on a bare environment.
func (r *Runner) Commit(dir, message string) error {
	if err := r.ensureCommitIdentity(dir); err != nil {
		return fmt.Errorf("setting commit identity: %w", err)
	}
	return r.runQuiet(dir, "commit", "-m", message)
}

// CommitMerge concludes an in-progress merge using the default message.
func (r *Runner) CommitMerge(dir string) error {
	if err := r.ensureCommitIdentity(dir); err != nil {
		return fmt.Errorf("setting commit identity: %w", err)
	}
	return r.runQuiet(dir, "commit", "--no-edit")
}

// Tag creates a lightweight tag. With force an existing tag with the same
// name is moved.
func (r *Runner) Tag(dir, name string, force bool) error {
	args := []string{"tag"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, name)
	return r.runQuiet(dir, args...)
}

// Push pushes the given branch to origin.
func (r *Runner) Push(dir, branch string) error {
	return r.run(dir, "push", "origin", branch)
}

// PushTags pushes all local tags to origin. With force existing remote
// tags are overwritten.
func (r *Runner) PushTags(dir string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, "origin", "--tags")
	return r.run(dir, args...)
}

// Merge merges the given branch into the current one. A merge stopped by
// conflicts returns ErrConflict; any other failure is returned as-is.
func (r *Runner) Merge(dir, branch string) error {
	err := r.run(dir, "merge", branch)
	if err == nil {
		return nil
	}
	if !isExitError(err) {
		return err
	}
	unmerged, uerr := r.UnmergedFiles(dir)
	if uerr == nil && len(unmerged) > 0 {
		return ErrConflict
	}
	return fmt.Errorf("merging %s: %w", branch, err)
}

// UnmergedFiles lists paths left unmerged by a conflicting merge.
func (r *Runner) UnmergedFiles(dir string) ([]string, error) {
	out, err := r.output(dir, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// RestoreFrom replaces a path in the working tree with its content from
// the given ref and stages it.
func (r *Runner) RestoreFrom(dir, ref, path string) error {
	if err := r.runQuiet(dir, "checkout", ref, "--", path); err != nil {
		return fmt.Errorf("restoring %s from %s: %w", path, ref, err)
	}
	return r.Add(dir, path)
}

// IsDirty returns true if the working tree has uncommitted changes.
func (r *Runner) IsDirty(dir string) (bool, error) {
	out, err := r.output(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// TagExists checks if a local tag exists.
func (r *Runner) TagExists(dir, name string) (bool, error) {
	err := r.runQuiet(dir, "show-ref", "--verify", "--quiet", "refs/tags/"+name)
	if err != nil {
		if isExitError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ensureCommitIdentity sets repo-local user.name/user.email if they are not configured.
func (r *Runner) ensureCommitIdentity(dir string) error {
	if r.DryRun {
		return nil
	}
	if _, err := r.output(dir, "config", "user.name"); err != nil {
		if err2 := r.runQuiet(dir, "config", "user.name", "dtcc-release"); err2 != nil {
			return err2
		}
	}
	if _, err := r.output(dir, "config", "user.email"); err != nil {
		if err2 := r.runQuiet(dir, "config", "user.email", "dtcc-release@localhost"); err2 != nil {
			return err2
		}
	}
	return nil
}

// run executes a git command in the given directory, streaming its output.
func (r *Runner) run(dir string, args ...string) error {
	if r.DryRun {
		r.echo(args)
		return nil
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// runQuiet executes a git command without printing stdout.
// Stderr is captured and included in the error message on failure.
func (r *Runner) runQuiet(dir string, args ...string) error {
	if r.DryRun {
		r.echo(args)
		return nil
	}
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// output executes a git command and returns its stdout. Query commands are
// never issued in dry-run mode; callers branch before reaching them.
func (r *Runner) output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

func (r *Runner) echo(args []string) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintf(out, "[dry-run] git %s\n", strings.Join(args, " "))
}

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Pyproject returns a minimal pyproject.toml with the given version and an
// optional extra dependency entry.
func Pyproject(version string, deps ...string) string {
	s := "[project]\nname = \"sample-lib\"\nversion = \"" + version + "\"\ndependencies = [\n    \"numpy\",\n"
	for _, d := range deps {
		s += "    \"" + d + "\",\n"
	}
	s += "]\n"
	return s
}

// CreateReleaseRemote creates a bare repository at <base>/<org>/<repo>.git
// with main and develop branches and a seeded pyproject.toml, mimicking a
// project remote. Returns the remote base directory.
//
// The develop branch carries one commit beyond main so the merge in the
// release flow has something to do.
func CreateReleaseRemote(t *testing.T, org, repo, version string, deps ...string) string {
	t.Helper()
	base := t.TempDir()
	bare := filepath.Join(base, org, repo+".git")
	if err := os.MkdirAll(filepath.Dir(bare), 0755); err != nil {
		t.Fatal(err)
	}

	// Create a working repo first, then clone it bare.
	work := filepath.Join(base, "work-"+repo)
	Run(t, base, "git", "init", "-b", "main", work)
	Run(t, work, "git", "config", "user.email", "test@example.com")
	Run(t, work, "git", "config", "user.name", "Test")

	WriteFile(t, filepath.Join(work, "pyproject.toml"), Pyproject(version, deps...))
	WriteFile(t, filepath.Join(work, "README.md"), "# "+repo+"\n")
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "initial commit")

	Run(t, work, "git", "checkout", "-b", "develop")
	WriteFile(t, filepath.Join(work, "feature.txt"), "feature\n")
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "feature commit")

	// Switch back to main so the bare repo's HEAD points to main.
	Run(t, work, "git", "checkout", "main")

	Run(t, base, "git", "clone", "--bare", work, bare)
	if err := os.RemoveAll(work); err != nil {
		t.Fatal(err)
	}
	return base
}

// CommitOnBranch adds a commit to the given branch of a remote created by
// CreateReleaseRemote, writing file with content.
func CommitOnBranch(t *testing.T, base, org, repo, branch, file, content string) {
	t.Helper()
	bare := filepath.Join(base, org, repo+".git")
	work := filepath.Join(t.TempDir(), "work")
	Run(t, filepath.Dir(work), "git", "clone", bare, work)
	Run(t, work, "git", "config", "user.email", "test@example.com")
	Run(t, work, "git", "config", "user.name", "Test")
	Run(t, work, "git", "checkout", branch)
	WriteFile(t, filepath.Join(work, file), content)
	Run(t, work, "git", "add", ".")
	Run(t, work, "git", "commit", "-m", "update "+file)
	Run(t, work, "git", "push", "origin", branch)
}

// CloneBranch clones the given branch of a remote into a fresh temp dir
// for asserting post-release state. Returns the clone path.
func CloneBranch(t *testing.T, base, org, repo, branch string) string {
	t.Helper()
	bare := filepath.Join(base, org, repo+".git")
	dir := filepath.Join(t.TempDir(), "clone")
	Run(t, filepath.Dir(dir), "git", "clone", "--branch", branch, bare, dir)
	return dir
}

// Tags lists the tags of a remote created by CreateReleaseRemote.
func Tags(t *testing.T, base, org, repo string) []string {
	t.Helper()
	bare := filepath.Join(base, org, repo+".git")
	out := Output(t, bare, "git", "tag")
	var tags []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			tags = append(tags, line)
		}
	}
	return tags
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}

// Run executes a command in dir, failing the test on error.
func Run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}

// Output executes a command in dir and returns its stdout, failing the
// test on error.
func Output(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
	return string(out)
}

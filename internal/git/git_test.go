package git

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtcc-platform/dtcc-utils/internal/testutil"
)

// initRepo creates a local repository with one commit on main.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.Run(t, dir, "git", "init", "-b", "main", ".")
	testutil.Run(t, dir, "git", "config", "user.email", "test@example.com")
	testutil.Run(t, dir, "git", "config", "user.name", "Test")
	testutil.WriteFile(t, filepath.Join(dir, "pyproject.toml"), testutil.Pyproject("0.9.0"))
	testutil.Run(t, dir, "git", "add", ".")
	testutil.Run(t, dir, "git", "commit", "-m", "initial commit")
	return dir
}

func TestIsDirty(t *testing.T) {
	dir := initRepo(t)
	r := &Runner{}

	dirty, err := r.IsDirty(dir)
	if err != nil {
		t.Fatalf("IsDirty() error: %v", err)
	}
	if dirty {
		t.Error("fresh repo should not be dirty")
	}

	testutil.WriteFile(t, filepath.Join(dir, "pyproject.toml"), testutil.Pyproject("1.0.0"))
	dirty, err = r.IsDirty(dir)
	if err != nil {
		t.Fatalf("IsDirty() error: %v", err)
	}
	if !dirty {
		t.Error("modified repo should be dirty")
	}
}

func TestCommitAndTag(t *testing.T) {
	dir := initRepo(t)
	r := &Runner{}

	testutil.WriteFile(t, filepath.Join(dir, "pyproject.toml"), testutil.Pyproject("1.0.0"))
	if err := r.Add(dir, "pyproject.toml"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := r.Commit(dir, "Bump version to 1.0.0"); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	exists, err := r.TagExists(dir, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() error: %v", err)
	}
	if exists {
		t.Error("tag should not exist yet")
	}

	if err := r.Tag(dir, "v1.0.0", false); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	exists, err = r.TagExists(dir, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() error: %v", err)
	}
	if !exists {
		t.Error("tag should exist after Tag()")
	}
}

func TestTag_forceMovesExisting(t *testing.T) {
	dir := initRepo(t)
	r := &Runner{}

	if err := r.Tag(dir, "v1.0.0", false); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if err := r.Tag(dir, "v1.0.0", false); err == nil {
		t.Error("re-tagging without force should fail")
	}
	if err := r.Tag(dir, "v1.0.0", true); err != nil {
		t.Errorf("re-tagging with force should succeed: %v", err)
	}
}

func TestMerge_clean(t *testing.T) {
	dir := initRepo(t)
	r := &Runner{}

	testutil.Run(t, dir, "git", "checkout", "-b", "develop")
	testutil.WriteFile(t, filepath.Join(dir, "feature.txt"), "feature\n")
	testutil.Run(t, dir, "git", "add", ".")
	testutil.Run(t, dir, "git", "commit", "-m", "feature")
	testutil.Run(t, dir, "git", "checkout", "main")

	if err := r.Merge(dir, "develop"); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "feature.txt")); err != nil {
		t.Errorf("merged file missing: %v", err)
	}
}

func TestMerge_conflictResolvedFromBranch(t *testing.T) {
	dir := initRepo(t)
	r := &Runner{}

	// Both branches rewrite the same version line.
	testutil.Run(t, dir, "git", "checkout", "-b", "develop")
	testutil.WriteFile(t, filepath.Join(dir, "pyproject.toml"), testutil.Pyproject("1.2.0dev"))
	testutil.Run(t, dir, "git", "add", ".")
	testutil.Run(t, dir, "git", "commit", "-m", "bump on develop")

	testutil.Run(t, dir, "git", "checkout", "main")
	testutil.WriteFile(t, filepath.Join(dir, "pyproject.toml"), testutil.Pyproject("0.9.1"))
	testutil.Run(t, dir, "git", "add", ".")
	testutil.Run(t, dir, "git", "commit", "-m", "bump on main")

	err := r.Merge(dir, "develop")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Merge() error = %v, want ErrConflict", err)
	}

	unmerged, err := r.UnmergedFiles(dir)
	if err != nil {
		t.Fatalf("UnmergedFiles() error: %v", err)
	}
	if len(unmerged) != 1 || unmerged[0] != "pyproject.toml" {
		t.Fatalf("UnmergedFiles() = %v, want [pyproject.toml]", unmerged)
	}

	if err := r.RestoreFrom(dir, "develop", "pyproject.toml"); err != nil {
		t.Fatalf("RestoreFrom() error: %v", err)
	}
	if err := r.CommitMerge(dir); err != nil {
		t.Fatalf("CommitMerge() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `version = "1.2.0dev"`) {
		t.Errorf("manifest should hold develop's version after resolution:\n%s", data)
	}

	dirty, err := r.IsDirty(dir)
	if err != nil {
		t.Fatalf("IsDirty() error: %v", err)
	}
	if dirty {
		t.Error("tree should be clean after merge commit")
	}
}

func TestDryRun_executesNothing(t *testing.T) {
	var buf bytes.Buffer
	r := &Runner{DryRun: true, Out: &buf}

	dest := filepath.Join(t.TempDir(), "clone")
	if err := r.Clone("/nonexistent/repo.git", dest); err != nil {
		t.Fatalf("Clone() in dry-run error: %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("dry-run clone should not create the destination")
	}

	if err := r.Commit(dest, "msg"); err != nil {
		t.Fatalf("Commit() in dry-run error: %v", err)
	}
	if err := r.PushTags(dest, false); err != nil {
		t.Fatalf("PushTags() in dry-run error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[dry-run] git clone /nonexistent/repo.git",
		"[dry-run] git commit -m msg",
		"[dry-run] git push origin --tags",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

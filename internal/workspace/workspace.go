package workspace

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// Workspace is an ephemeral directory holding one clone of the target
// repository. It is exclusive to a single run and removed unconditionally
// on every exit path, including operator interrupt.
type Workspace struct {
	Dir string

	sigCh   chan os.Signal
	stopped bool
}

// Create makes a uniquely named temporary directory and installs a signal
// handler so SIGINT/SIGTERM remove it before the process exits.
func Create() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "dtcc-release-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	w := &Workspace{Dir: dir, sigCh: make(chan os.Signal, 1)}
	signal.Notify(w.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-w.sigCh; !ok {
			return
		}
		_ = os.RemoveAll(w.Dir)
		os.Exit(1)
	}()

	return w, nil
}

// RepoDir returns the clone path for a repository inside the workspace.
func (w *Workspace) RepoDir(repo string) string {
	return filepath.Join(w.Dir, repo)
}

// Remove deletes the workspace directory and releases the signal handler.
// Safe to call more than once; callers defer it immediately after Create.
func (w *Workspace) Remove() error {
	signal.Stop(w.sigCh)
	if !w.stopped {
		w.stopped = true
		close(w.sigCh)
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("removing workspace: %w", err)
	}
	return nil
}

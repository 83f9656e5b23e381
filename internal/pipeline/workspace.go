package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Workspace manages staging files for a single render job. The WAV is
// written here first and moved to its final path only after validation, so
// callers never observe a half-written artifact.
type Workspace struct {
	Dir       string
	CreatedAt time.Time
}

// CreateWorkspace creates an isolated staging directory in the system temp
// directory.
func CreateWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "beatforge-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// StagedWAV returns the staging path for the rendered file.
func (w *Workspace) StagedWAV() string { return filepath.Join(w.Dir, "render.wav") }

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}

// Promote moves a staged file to its final path. Rename is atomic on the
// same filesystem; across filesystems it falls back to copy-then-remove.
func (w *Workspace) Promote(staged, final string) error {
	if dir := filepath.Dir(final); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.Rename(staged, final); err == nil {
		return nil
	}

	src, err := os.Open(staged)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(final)
	if err != nil {
		return fmt.Errorf("create final file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to final path: %w", err)
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(staged)
}

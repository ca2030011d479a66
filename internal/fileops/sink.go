package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink writes extracted files under a destination root.
//
// Files are written to a temporary file in the final directory, then
// renamed into place on Commit, so partially written files are never
// visible at their final paths.
type Sink struct {
	destDir   string
	overwrite bool
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithOverwrite controls whether existing destination files are
// replaced. When disabled, ShouldProcess reports false for paths that
// already exist.
func WithOverwrite(overwrite bool) SinkOption {
	return func(s *Sink) {
		s.overwrite = overwrite
	}
}

// NewSink creates a Sink rooted at destDir. Parent directories are
// created as needed, per file.
func NewSink(destDir string, opts ...SinkOption) *Sink {
	s := &Sink{destDir: destDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShouldProcess reports whether relPath should be written. It is false
// only when overwriting is disabled and the destination exists.
func (s *Sink) ShouldProcess(relPath string) bool {
	if s.overwrite {
		return true
	}
	_, err := os.Stat(s.path(relPath))
	return os.IsNotExist(err)
}

// Writer returns a Committer for relPath, a slash-separated path
// relative to the destination root.
func (s *Sink) Writer(relPath string) (*Committer, error) {
	destPath := s.path(relPath)

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".iscab-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &Committer{destPath: destPath, tempFile: tempFile}, nil
}

func (s *Sink) path(relPath string) string {
	return filepath.Join(s.destDir, filepath.FromSlash(relPath))
}

// Committer accumulates one file's content in a temp file and renames
// it into place on Commit.
type Committer struct {
	destPath string
	tempFile *os.File
}

// Write implements io.Writer.
func (c *Committer) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file and renames it to the final path.
func (c *Committer) Commit() error {
	tempPath := c.tempFile.Name()
	if err := c.tempFile.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}

	// The catalog records no file modes; extracted files get a fixed
	// default instead of the temp file's restrictive one.
	if err := os.Chmod(tempPath, 0o644); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("chmod: %w", err)
	}

	if err := os.Rename(tempPath, c.destPath); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destPath, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (c *Committer) Discard() error {
	tempPath := c.tempFile.Name()
	_ = c.tempFile.Close() //nolint:errcheck // cleaning up
	return os.Remove(tempPath)
}

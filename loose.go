package iscab

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// locateLoose finds the on-disk loose file for dir/name under root.
// The exact path wins; otherwise the parent directory is scanned
// case-insensitively, matching media authored on case-insensitive
// filesystems.
func locateLoose(root, dir, name string) (string, error) {
	rel := filepath.FromSlash(archivePath(dir, name))
	exact := filepath.Join(root, rel)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	parent := filepath.Dir(exact)
	base := filepath.Base(exact)

	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrLooseFileMissing, rel)
		}
		return "", fmt.Errorf("scan %s: %w", parent, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), base) {
			return filepath.Join(parent, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLooseFileMissing, rel)
}

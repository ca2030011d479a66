package iscab

import (
	"fmt"
	"os"
	"path/filepath"
)

// Conventional cabinet file names on install media.
const (
	DefaultHeaderName = "data1.hdr"
	DefaultDataName   = "data1.cab"
)

// CabinetFile is a Cabinet backed by an open data volume on disk.
type CabinetFile struct {
	*Cabinet
	data *os.File
}

// Open loads the cabinet header at headerPath and opens the data
// volume at dataPath. The header's directory becomes the setup root
// for loose files unless WithSetupRoot overrides it.
func Open(headerPath, dataPath string, opts ...Option) (*CabinetFile, error) {
	headerData, err := os.ReadFile(headerPath) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("read cabinet header: %w", err)
	}

	f, err := os.Open(dataPath) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open data volume: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("stat data volume: %w", err)
	}

	opts = append([]Option{WithSetupRoot(filepath.Dir(headerPath))}, opts...)
	c, err := New(headerData, &fileSource{file: f, size: info.Size()}, opts...)
	if err != nil {
		_ = f.Close() //nolint:errcheck // best-effort cleanup
		return nil, err
	}

	return &CabinetFile{Cabinet: c, data: f}, nil
}

// Close releases the data volume.
func (cf *CabinetFile) Close() error {
	return cf.data.Close()
}

type fileSource struct {
	file *os.File
	size int64
}

var _ ByteSource = (*fileSource)(nil)

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

func (s *fileSource) Size() int64 {
	return s.size
}

package iscab

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/meigma/iscab/internal/chunk"
	"github.com/meigma/iscab/internal/header"
)

// Cabinet is a parsed cabinet archive. The catalog is held in memory;
// payloads are read from the data volume on demand.
//
// Catalog queries and Reader are safe for concurrent use.
type Cabinet struct {
	hdr       *header.Header
	data      ByteSource
	setupRoot string
	logger    *slog.Logger

	statsOnce sync.Once
	stats     Stats
}

// New parses headerData as a cabinet header and returns a Cabinet
// reading payloads from data.
func New(headerData []byte, data ByteSource, opts ...Option) (*Cabinet, error) {
	hdr, err := header.Parse(headerData)
	if err != nil {
		return nil, fmt.Errorf("parse cabinet header: %w", err)
	}

	c := &Cabinet{hdr: hdr, data: data}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cabinet) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// Version returns the major format version from the header.
func (c *Cabinet) Version() int {
	return c.hdr.Common.MajorVersion()
}

// Files returns the catalog entries in descriptor order.
func (c *Cabinet) Files() []FileDescriptor {
	return slices.Clone(c.hdr.Files)
}

// Dirs returns the directory table.
func (c *Cabinet) Dirs() []string {
	return slices.Clone(c.hdr.Dirs)
}

// Groups returns the file groups.
func (c *Cabinet) Groups() []FileGroup {
	return slices.Clone(c.hdr.Groups)
}

// Components returns the components.
func (c *Cabinet) Components() []Component {
	return slices.Clone(c.hdr.Components)
}

// FilePath returns f's archive path: its directory joined with its
// name, slash separated. Entries with an out-of-range directory index
// sit at the archive root.
func (c *Cabinet) FilePath(f FileDescriptor) string {
	return archivePath(c.dirOf(f), f.Name)
}

func (c *Cabinet) dirOf(f FileDescriptor) string {
	if f.DirIndex >= 0 && f.DirIndex < len(c.hdr.Dirs) {
		return c.hdr.Dirs[f.DirIndex]
	}
	return ""
}

// Reader returns a reader for f's expanded content. It fails with
// ErrFileInvalid for invalid entries and ErrNotStored for loose files,
// which have no payload in the data volume. Close returns the
// decompressor to its pool.
func (c *Cabinet) Reader(f FileDescriptor) (io.ReadCloser, error) {
	if f.Invalid() {
		return nil, fmt.Errorf("%w: %s", ErrFileInvalid, f.Name)
	}
	if !f.Compressed() {
		return nil, fmt.Errorf("%w: %s", ErrNotStored, f.Name)
	}
	return c.chunkReader(f)
}

func (c *Cabinet) chunkReader(f FileDescriptor) (*chunk.Reader, error) {
	off := int64(f.DataOffset)
	size := c.data.Size()
	if off > size {
		return nil, fmt.Errorf("%w: data offset 0x%x in %d-byte volume", ErrTruncatedStream, f.DataOffset, size)
	}
	section := io.NewSectionReader(c.data, off, size-off)
	return chunk.NewReader(section, int64(f.ExpandedSize)), nil
}

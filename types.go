package iscab

import (
	"io"

	"github.com/meigma/iscab/internal/header"
)

// ByteSource provides random access to a cabinet data volume.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// FileDescriptor is one catalog entry.
type FileDescriptor = header.FileDescriptor

// FileFlags is the per-file flag word from the catalog.
type FileFlags = header.FileFlags

// FileGroup names a contiguous range of catalog entries.
type FileGroup = header.FileGroup

// Component groups file groups under an installable unit.
type Component = header.Component

// File flag bits.
const (
	FileSplit      = header.FileSplit
	FileObfuscated = header.FileObfuscated
	FileCompressed = header.FileCompressed
	FileInvalid    = header.FileInvalid
)

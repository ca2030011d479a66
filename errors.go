package iscab

import (
	"errors"

	"github.com/meigma/iscab/internal/chunk"
	"github.com/meigma/iscab/internal/header"
)

// ErrBadSignature is returned when the header does not start with the
// cabinet magic number.
var ErrBadSignature = header.ErrBadSignature

// ErrOutOfBounds is returned when a catalog offset points outside the
// header.
var ErrOutOfBounds = header.ErrOutOfBounds

// ErrTruncatedString is returned when a catalog string runs past the
// end of the header.
var ErrTruncatedString = header.ErrTruncatedString

// ErrTruncatedStream is returned when a chunk stream ends mid-chunk.
var ErrTruncatedStream = chunk.ErrTruncated

// ErrDecompression is returned when a chunk's deflate body cannot be
// decoded.
var ErrDecompression = chunk.ErrDecompression

// ErrFileInvalid is returned when reading a file whose descriptor
// carries the invalid flag.
var ErrFileInvalid = errors.New("iscab: file marked invalid")

// ErrNotStored is returned when reading a file that has no payload in
// the data volume. Such files are loose on the install media.
var ErrNotStored = errors.New("iscab: file not stored in data volume")

// ErrUnsafePath is returned for catalog paths that would escape the
// extraction root.
var ErrUnsafePath = errors.New("iscab: unsafe archive path")

// ErrLooseFileMissing is returned when a loose file cannot be found
// under the setup root.
var ErrLooseFileMissing = errors.New("iscab: loose file not found")

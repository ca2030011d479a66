// Package fileops provides the file-level plumbing for extraction:
// checksum-accumulating reads and atomic destination writes.
package fileops

import (
	"crypto/md5" //nolint:gosec // cabinet checksums are MD5
	"hash"
	"io"
)

// MD5Reader digests everything read through it. Cabinet catalogs
// record an MD5 of each compressed entry's expanded content, so
// extraction accumulates the digest in the same pass that writes the
// output file.
type MD5Reader struct {
	r io.Reader
	h hash.Hash
}

// NewMD5Reader wraps r.
func NewMD5Reader(r io.Reader) *MD5Reader {
	return &MD5Reader{r: r, h: md5.New()} //nolint:gosec // cabinet checksums are MD5
}

// Read implements io.Reader.
func (mr *MD5Reader) Read(p []byte) (int, error) {
	n, err := mr.r.Read(p)
	if n > 0 {
		_, _ = mr.h.Write(p[:n]) //nolint:errcheck // hash writes never fail
	}
	return n, err
}

// Sum16 returns the digest of the bytes read so far in the catalog's
// fixed-width form.
func (mr *MD5Reader) Sum16() [16]byte {
	var sum [16]byte
	copy(sum[:], mr.h.Sum(nil))
	return sum
}

package header

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Buffer provides bounds-checked little-endian reads over an in-memory
// header buffer.
//
// Offsets are uint64 so that address arithmetic (base + relative
// offset) cannot wrap before the bounds check. Reads never mutate the
// buffer and report malformed offsets as typed errors rather than
// panicking.
type Buffer struct {
	data []byte
}

// NewBuffer wraps data. The buffer aliases data; callers must not
// modify it while parsing.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// U16 reads a little-endian uint16 at off.
func (b *Buffer) U16(off uint64) (uint16, error) {
	if err := b.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b.data[off:]), nil
}

// U32 reads a little-endian uint32 at off.
func (b *Buffer) U32(off uint64) (uint32, error) {
	if err := b.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b.data[off:]), nil
}

// Bytes returns a copy of n bytes starting at off.
func (b *Buffer) Bytes(off, n uint64) ([]byte, error) {
	if err := b.check(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.data[off:])
	return out, nil
}

// CString reads a null-terminated single-byte string at off. The
// terminator must appear before the end of the buffer.
func (b *Buffer) CString(off uint64) (string, error) {
	if err := b.check(off, 0); err != nil {
		return "", err
	}
	rest := b.data[off:]
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", fmt.Errorf("%w: string at 0x%x", ErrTruncatedString, off)
	}
	return string(rest[:i]), nil
}

func (b *Buffer) check(off, width uint64) error {
	if off+width < off || off+width > uint64(len(b.data)) {
		return fmt.Errorf("%w: %d bytes at 0x%x in %d-byte buffer", ErrOutOfBounds, width, off, len(b.data))
	}
	return nil
}

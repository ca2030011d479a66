// Package chunk implements the framed compression format of cabinet
// data volumes: a sequence of chunks, each a 2-byte little-endian
// length followed by that many bytes of raw (header-less) deflate
// data. The length prefix bounds every chunk independently, so a
// corrupt chunk cannot desynchronize the reader past its own boundary.
package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
)

// Sentinel errors for chunk decoding. Failure sites wrap these with
// context; callers match with errors.Is.
var (
	// ErrTruncated is returned when the source ends inside a chunk
	// length or chunk body.
	ErrTruncated = errors.New("iscab: truncated chunk stream")

	// ErrDecompression is returned when the deflate decoder rejects a
	// chunk.
	ErrDecompression = errors.New("iscab: decompression failed")
)

// decoders pools flate readers across streams. Decoder state is
// expensive to allocate relative to typical chunk sizes.
var decoders = sync.Pool{}

func getDecoder(src io.Reader) (io.ReadCloser, error) {
	if v := decoders.Get(); v != nil {
		dec := v.(io.ReadCloser)
		if err := dec.(flate.Resetter).Reset(src, nil); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return flate.NewReader(src), nil
}

func putDecoder(dec io.ReadCloser) {
	decoders.Put(dec)
}

// Reader streams the expanded content of one chunk stream.
//
// Reading stops once the expanded byte count promised by the header
// has been produced, when a zero chunk length appears, or when the
// source ends cleanly at a chunk boundary. Whole chunks are always
// delivered, so the total produced may exceed the expected count;
// Produced reports the final total for the caller's size
// reconciliation.
type Reader struct {
	src      io.Reader
	expected int64
	produced int64
	chunk    bytes.Buffer
	raw      []byte
	dec      io.ReadCloser
	err      error
}

// NewReader returns a Reader decoding the chunk stream from src.
// expected is the expanded size declared by the file's descriptor.
func NewReader(src io.Reader, expected int64) *Reader {
	return &Reader{src: src, expected: expected}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for r.chunk.Len() == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.fill()
	}
	n, _ := r.chunk.Read(p)
	return n, nil
}

// fill decodes the next chunk into the serving buffer. It returns
// io.EOF at any of the stream terminators.
func (r *Reader) fill() error {
	if r.produced >= r.expected {
		return io.EOF
	}

	var hdr [2]byte
	if _, err := io.ReadFull(r.src, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			// A clean end at a chunk boundary terminates the stream;
			// the caller reconciles the byte count against the header.
			return io.EOF
		}
		return fmt.Errorf("%w: chunk length: %v", ErrTruncated, err)
	}
	size := binary.LittleEndian.Uint16(hdr[:])
	if size == 0 {
		return io.EOF
	}

	if cap(r.raw) < int(size) {
		r.raw = make([]byte, size)
	}
	body := r.raw[:size]
	if _, err := io.ReadFull(r.src, body); err != nil {
		return fmt.Errorf("%w: %d-byte chunk: %v", ErrTruncated, size, err)
	}

	// Each chunk is an independent deflate stream; reuse one decoder
	// across chunks via Reset.
	if r.dec == nil {
		dec, err := getDecoder(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		r.dec = dec
	} else if err := r.dec.(flate.Resetter).Reset(bytes.NewReader(body), nil); err != nil {
		return fmt.Errorf("%w: %v", ErrDecompression, err)
	}

	n, err := r.chunk.ReadFrom(r.dec)
	r.produced += n
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return nil
}

// Produced returns the total expanded bytes decoded so far.
func (r *Reader) Produced() int64 {
	return r.produced
}

// Close returns the pooled decoder. The Reader must not be used after
// Close.
func (r *Reader) Close() error {
	if r.dec != nil {
		putDecoder(r.dec)
		r.dec = nil
	}
	return nil
}

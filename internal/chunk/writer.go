package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultChunkSize is the input block size compressed per chunk. The
// compressed form must fit the 2-byte length prefix; deflate overhead
// on an incompressible block stays well inside the headroom this
// leaves.
const DefaultChunkSize = 0x8000

// Writer frames data into length-prefixed raw-deflate chunks, the
// encoding counterpart of Reader. It backs the round-trip tests and
// the synthetic cabinet fixtures.
type Writer struct {
	dst       io.Writer
	chunkSize int
	fw        *flate.Writer
	pend      []byte
	comp      bytes.Buffer
	err       error
}

// NewWriter returns a Writer with the default chunk size.
func NewWriter(dst io.Writer) *Writer {
	return NewWriterSize(dst, DefaultChunkSize)
}

// NewWriterSize returns a Writer compressing chunkSize input bytes per
// chunk. Sizes outside (0, DefaultChunkSize] fall back to the default.
func NewWriterSize(dst io.Writer, chunkSize int) *Writer {
	if chunkSize <= 0 || chunkSize > DefaultChunkSize {
		chunkSize = DefaultChunkSize
	}
	return &Writer{dst: dst, chunkSize: chunkSize}
}

// Write implements io.Writer. Full chunks are compressed and emitted
// as they accumulate; the remainder is held until Close.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	total := len(p)
	for len(p) > 0 {
		take := w.chunkSize - len(w.pend)
		if take > len(p) {
			take = len(p)
		}
		w.pend = append(w.pend, p[:take]...)
		p = p[take:]
		if len(w.pend) == w.chunkSize {
			if err := w.flushChunk(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

// Close flushes the final partial chunk. It writes no zero terminator;
// readers stop at the expanded size or at the end of the stream.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	return w.flushChunk()
}

func (w *Writer) flushChunk() error {
	if len(w.pend) == 0 {
		return nil
	}

	w.comp.Reset()
	if w.fw == nil {
		fw, err := flate.NewWriter(&w.comp, flate.DefaultCompression)
		if err != nil {
			w.err = err
			return err
		}
		w.fw = fw
	} else {
		w.fw.Reset(&w.comp)
	}
	if _, err := w.fw.Write(w.pend); err != nil {
		w.err = err
		return err
	}
	if err := w.fw.Close(); err != nil {
		w.err = err
		return err
	}
	if w.comp.Len() > 0xFFFF {
		w.err = fmt.Errorf("compressed chunk of %d bytes exceeds frame limit", w.comp.Len())
		return w.err
	}

	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], uint16(w.comp.Len()))
	if _, err := w.dst.Write(hdr[:]); err != nil {
		w.err = err
		return err
	}
	if _, err := w.dst.Write(w.comp.Bytes()); err != nil {
		w.err = err
		return err
	}
	w.pend = w.pend[:0]
	return nil
}

package chunk

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

func encode(t *testing.T, payload []byte, chunkSize int) []byte {
	t.Helper()
	var stream bytes.Buffer
	w := NewWriter(&stream)
	if chunkSize > 0 {
		w = NewWriterSize(&stream, chunkSize)
	}
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return stream.Bytes()
}

func TestReaderRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		chunkSize int
	}{
		{"empty", 0, 0},
		{"single chunk", 100, 0},
		{"exact chunk boundary", 512, 512},
		{"multiple chunks", 5000, 512},
		{"default chunk size", 100_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := testPayload(tt.size)
			stream := encode(t, payload, tt.chunkSize)

			r := NewReader(bytes.NewReader(stream), int64(len(payload)))
			defer r.Close() //nolint:errcheck // pool return only

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
			assert.Equal(t, int64(len(payload)), r.Produced())
		})
	}
}

func TestReaderStopsAtZeroLength(t *testing.T) {
	payload := testPayload(300)
	stream := encode(t, payload, 0)
	stream = append(stream, 0, 0, 0xDE, 0xAD)

	r := NewReader(bytes.NewReader(stream), int64(len(payload))+100)
	defer r.Close() //nolint:errcheck // pool return only

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReaderCleanEOFBelowExpected(t *testing.T) {
	payload := testPayload(500)
	stream := encode(t, payload, 0)

	r := NewReader(bytes.NewReader(stream), 600)
	defer r.Close() //nolint:errcheck // pool return only

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(500), r.Produced())
}

func TestReaderDeliversWholeChunks(t *testing.T) {
	payload := testPayload(500)
	stream := encode(t, payload, 250)

	// The expected size lands inside the second chunk; the whole
	// chunk is still delivered.
	r := NewReader(bytes.NewReader(stream), 300)
	defer r.Close() //nolint:errcheck // pool return only

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, int64(500), r.Produced())
}

func TestReaderTruncatedLength(t *testing.T) {
	payload := testPayload(100)
	stream := encode(t, payload, 0)
	stream = append(stream, 0x42)

	r := NewReader(bytes.NewReader(stream), 200)
	defer r.Close() //nolint:errcheck // pool return only

	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReaderTruncatedBody(t *testing.T) {
	payload := testPayload(100)
	stream := encode(t, payload, 0)
	stream = stream[:len(stream)-3]

	r := NewReader(bytes.NewReader(stream), int64(len(payload)))
	defer r.Close() //nolint:errcheck // pool return only

	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReaderCorruptChunk(t *testing.T) {
	stream := []byte{4, 0, 0xFF, 0xFF, 0xFF, 0xFF}

	r := NewReader(bytes.NewReader(stream), 10)
	defer r.Close() //nolint:errcheck // pool return only

	_, err := io.ReadAll(r)
	assert.ErrorIs(t, err, ErrDecompression)
}

func TestReaderSequentialStreams(t *testing.T) {
	for _, payload := range [][]byte{testPayload(600), testPayload(40)} {
		stream := encode(t, payload, 256)

		r := NewReader(bytes.NewReader(stream), int64(len(payload)))
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, payload, got)
	}
}

func TestWriterFraming(t *testing.T) {
	stream := encode(t, testPayload(700), 256)

	chunks := 0
	for rest := stream; len(rest) > 0; chunks++ {
		require.GreaterOrEqual(t, len(rest), 2)
		size := int(binary.LittleEndian.Uint16(rest))
		require.Greater(t, size, 0)
		require.GreaterOrEqual(t, len(rest)-2, size)
		rest = rest[2+size:]
	}
	assert.Equal(t, 3, chunks)
}

func TestWriterSizeFallback(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, DefaultChunkSize, NewWriterSize(&buf, 0).chunkSize)
	assert.Equal(t, DefaultChunkSize, NewWriterSize(&buf, -5).chunkSize)
	assert.Equal(t, DefaultChunkSize, NewWriterSize(&buf, DefaultChunkSize+1).chunkSize)
	assert.Equal(t, 512, NewWriterSize(&buf, 512).chunkSize)
}

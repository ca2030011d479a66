package iscab

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/iscab/internal/testcab"
)

func testCabinet(t *testing.T, b *testcab.Builder, opts ...Option) *Cabinet {
	t.Helper()
	hdr, data := b.Build()
	c, err := New(hdr, testcab.NewSource(data), opts...)
	require.NoError(t, err)
	return c
}

func TestNewParsesCatalog(t *testing.T) {
	c := testCabinet(t, &testcab.Builder{
		Dirs: []string{"DOCS", `BIN\TOOLS`},
		Files: []testcab.File{
			{Name: "readme.txt", Dir: 0, Data: []byte("manual")},
			{Name: "app.bin", Dir: 1, Flags: testcab.FlagCompressed, Data: []byte("executable bytes")},
			{Name: "root.ini", Dir: -1, Data: []byte("[setup]")},
		},
		Groups:     []testcab.Group{{Name: "Program Files", FirstFile: 0, LastFile: 2}},
		Components: []testcab.Component{{Name: "Main", Groups: []string{"Program Files"}}},
	})

	assert.Equal(t, 5, c.Version())
	assert.Equal(t, []string{"DOCS", `BIN\TOOLS`}, c.Dirs())

	files := c.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "DOCS/readme.txt", c.FilePath(files[0]))
	assert.Equal(t, "BIN/TOOLS/app.bin", c.FilePath(files[1]))
	assert.Equal(t, "root.ini", c.FilePath(files[2]))

	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Program Files", groups[0].Name)
	assert.Equal(t, 0, groups[0].FirstFile)
	assert.Equal(t, 2, groups[0].LastFile)

	comps := c.Components()
	require.Len(t, comps, 1)
	assert.Equal(t, "Main", comps[0].Name)
	assert.Equal(t, []string{"Program Files"}, comps[0].FileGroups)
}

func TestNewBadHeader(t *testing.T) {
	_, err := New([]byte("not a cabinet header"), testcab.NewSource(nil))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestReaderStreamsContent(t *testing.T) {
	payload := bytes.Repeat([]byte("cabinet payload "), 64)
	c := testCabinet(t, &testcab.Builder{
		Files: []testcab.File{
			{Name: "app.bin", Dir: -1, Flags: testcab.FlagCompressed, Data: payload, ChunkSize: 256},
		},
	})

	rc, err := c.Reader(c.Files()[0])
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck // pool return only

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReaderRefusals(t *testing.T) {
	c := testCabinet(t, &testcab.Builder{
		Files: []testcab.File{
			{Name: "loose.txt", Dir: -1, Data: []byte("on disk")},
			{Name: "bad.dat", Dir: -1, Flags: testcab.FlagInvalid},
		},
	})

	files := c.Files()
	_, err := c.Reader(files[0])
	assert.ErrorIs(t, err, ErrNotStored)

	_, err = c.Reader(files[1])
	assert.ErrorIs(t, err, ErrFileInvalid)
}

func TestReaderTruncatedVolume(t *testing.T) {
	hdr, data := (&testcab.Builder{
		Files: []testcab.File{
			{Name: "a.bin", Dir: -1, Flags: testcab.FlagCompressed, Data: []byte("first payload")},
			{Name: "b.bin", Dir: -1, Flags: testcab.FlagCompressed, Data: []byte("second payload")},
		},
	}).Build()

	c, err := New(hdr, testcab.NewSource(data[:1]))
	require.NoError(t, err)
	files := c.Files()

	// offset beyond the truncated volume
	_, err = c.Reader(files[1])
	assert.ErrorIs(t, err, ErrTruncatedStream)

	// stream cut mid-chunk
	rc, err := c.Reader(files[0])
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck // pool return only
	_, err = io.ReadAll(rc)
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestStats(t *testing.T) {
	c := testCabinet(t, &testcab.Builder{
		Dirs: []string{"DOCS"},
		Files: []testcab.File{
			{Name: "a.txt", Dir: 0, Data: []byte("12345")},
			{Name: "b.bin", Dir: 0, Flags: testcab.FlagCompressed, Data: bytes.Repeat([]byte("x"), 100)},
			{Name: "c.dat", Dir: 0, Flags: testcab.FlagInvalid},
			{Name: "d.bin", Dir: 0, Flags: testcab.FlagCompressed | testcab.FlagObfuscated, Data: []byte("ob")},
		},
	})

	s := c.Stats()
	assert.Equal(t, 4, s.Files)
	assert.Equal(t, 1, s.Dirs)
	assert.Equal(t, 2, s.Compressed)
	assert.Equal(t, 1, s.Loose)
	assert.Equal(t, 1, s.Invalid)
	assert.Equal(t, 1, s.Obfuscated)
	assert.Equal(t, int64(107), s.ExpandedBytes)
	assert.NotZero(t, s.CompressedBytes)

	// cached on second call
	assert.Equal(t, s, c.Stats())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	hdr, data := (&testcab.Builder{
		Dirs: []string{"DOCS"},
		Files: []testcab.File{
			{Name: "readme.txt", Dir: 0, Data: []byte("manual")},
			{Name: "app.bin", Dir: 0, Flags: testcab.FlagCompressed, Data: []byte("payload")},
		},
	}).Build()

	headerPath := filepath.Join(dir, DefaultHeaderName)
	require.NoError(t, os.WriteFile(headerPath, hdr, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDataName), data, 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "DOCS"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DOCS", "readme.txt"), []byte("manual"), 0o600))

	cab, err := Open(headerPath, filepath.Join(dir, DefaultDataName))
	require.NoError(t, err)

	require.Len(t, cab.Files(), 2)

	// setup root defaults to the header's directory
	dest := t.TempDir()
	report, err := cab.Extract(context.Background(), dest)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, 1, report.LooseCopied)

	require.NoError(t, cab.Close())
}

func TestOpenMissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "absent.hdr"), filepath.Join(dir, "absent.cab"))
	assert.Error(t, err)

	hdr, _ := (&testcab.Builder{}).Build()
	headerPath := filepath.Join(dir, DefaultHeaderName)
	require.NoError(t, os.WriteFile(headerPath, hdr, 0o600))

	_, err = Open(headerPath, filepath.Join(dir, "absent.cab"))
	assert.Error(t, err)
}

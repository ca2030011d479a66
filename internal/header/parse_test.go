package header

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/iscab/internal/testcab"
)

func TestParseCatalog(t *testing.T) {
	raw, _ := (&testcab.Builder{
		Dirs: []string{"DOCS", `BIN\TOOLS`},
		Files: []testcab.File{
			{Name: "readme.txt", Dir: 0, Data: []byte("manual")},
			{Name: "app.bin", Dir: 1, Flags: testcab.FlagCompressed, Data: []byte("executable bytes")},
			{Name: "bad.dat", Dir: -1, Flags: testcab.FlagInvalid},
		},
		Groups: []testcab.Group{
			{Name: "Program Files", FirstFile: 0, LastFile: 2},
		},
		Components: []testcab.Component{
			{Name: "Main Application", Groups: []string{"Program Files"}},
		},
	}).Build()

	h, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, 5, h.Common.MajorVersion())
	assert.Equal(t, []string{"DOCS", `BIN\TOOLS`}, h.Dirs)
	require.Len(t, h.Files, 3)

	readme := h.Files[0]
	assert.Equal(t, 0, readme.Index)
	assert.Equal(t, "readme.txt", readme.Name)
	assert.Equal(t, 0, readme.DirIndex)
	assert.False(t, readme.Compressed())
	assert.Equal(t, uint32(6), readme.ExpandedSize)
	assert.False(t, readme.HasChecksum())

	app := h.Files[1]
	assert.Equal(t, 1, app.Index)
	assert.Equal(t, "app.bin", app.Name)
	assert.Equal(t, 1, app.DirIndex)
	assert.True(t, app.Compressed())
	assert.True(t, app.HasChecksum())
	assert.Equal(t, uint32(16), app.ExpandedSize)
	assert.NotZero(t, app.CompressedSize)

	bad := h.Files[2]
	assert.True(t, bad.Invalid())
	assert.Equal(t, -1, bad.DirIndex)

	require.Len(t, h.Groups, 1)
	assert.Equal(t, FileGroup{Name: "Program Files", FirstFile: 0, LastFile: 2}, h.Groups[0])

	require.Len(t, h.Components, 1)
	assert.Equal(t, Component{Name: "Main Application", FileGroups: []string{"Program Files"}}, h.Components[0])
}

func TestParseEmptyCatalog(t *testing.T) {
	raw, _ := (&testcab.Builder{}).Build()

	h, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, h.Dirs)
	assert.Empty(t, h.Files)
	assert.Empty(t, h.Groups)
	assert.Empty(t, h.Components)
}

func TestParseOutOfRangeDirIndex(t *testing.T) {
	raw, _ := (&testcab.Builder{
		Dirs: []string{"DOCS"},
		Files: []testcab.File{
			{Name: "stray.txt", Dir: 40, Data: []byte("x")},
		},
	}).Build()

	h, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, h.Files, 1)
	assert.Equal(t, -1, h.Files[0].DirIndex)
}

func TestParseBadSignature(t *testing.T) {
	raw, _ := (&testcab.Builder{}).Build()
	raw[0] = 'X'

	_, err := Parse(raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestParseTruncated(t *testing.T) {
	raw, _ := (&testcab.Builder{
		Files: []testcab.File{{Name: "a.txt", Dir: -1, Data: []byte("abc")}},
	}).Build()

	for _, size := range []int{0, 4, 0x13, 0x100, len(raw) - 1} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			_, err := Parse(raw[:size])
			assert.Error(t, err)
		})
	}
}

func TestFileFlagsString(t *testing.T) {
	assert.Equal(t, "-", FileFlags(0).String())
	assert.Equal(t, "C", FileCompressed.String())
	assert.Equal(t, "SC", (FileSplit | FileCompressed).String())
	assert.Equal(t, "SOCI", (FileSplit | FileObfuscated | FileCompressed | FileInvalid).String())
}

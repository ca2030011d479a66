package iscab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain name", "readme.txt", "readme.txt"},
		{"backslashes", `BIN\TOOLS`, "BIN/TOOLS"},
		{"mixed separators", `BIN\TOOLS/x86`, "BIN/TOOLS/x86"},
		{"leading backslash", `\DOCS`, "DOCS"},
		{"trailing backslash", `DOCS\`, "DOCS"},
		{"doubled separators", `DOCS\\sub`, "DOCS/sub"},
		{"only separators", `\\`, ""},
		// Dot segments survive so fs.ValidPath can reject them.
		{"dotdot preserved", `..\secrets`, "../secrets"},
		{"dot preserved", `.\a`, "./a"},
		{"dotdot in middle", `a\..\b`, "a/../b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.input))
		})
	}
}

func TestArchivePath(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		file string
		want string
	}{
		{"dir and name", "DOCS", "readme.txt", "DOCS/readme.txt"},
		{"nested dir", `BIN\TOOLS`, "app.exe", "BIN/TOOLS/app.exe"},
		{"no dir", "", "setup.ini", "setup.ini"},
		{"no name", "DOCS", "", "DOCS"},
		{"both empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, archivePath(tt.dir, tt.file))
		})
	}
}

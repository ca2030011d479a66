// Package testcab builds synthetic cabinet fixtures for tests.
//
// A Builder assembles a header blob and a matching data volume from a
// declarative description of directories, files, groups, and
// components. Compressed file payloads are chunked and deflated the
// same way a real volume stores them.
package testcab

import (
	"bytes"
	"crypto/md5" //nolint:gosec // cabinet checksums are MD5
	"encoding/binary"
	"io"

	"github.com/meigma/iscab/internal/chunk"
)

// File flag bits as stored in descriptor records.
const (
	FlagSplit      uint16 = 0x1
	FlagObfuscated uint16 = 0x2
	FlagCompressed uint16 = 0x4
	FlagInvalid    uint16 = 0x8
)

const (
	cdOff = 0x14  // descriptor follows the common header
	ftOff = 0x276 // file table follows the component slot array
)

// File describes one catalog entry.
type File struct {
	Name string
	// Dir indexes Builder.Dirs. Negative emits an out-of-range
	// directory index, which readers treat as "no directory".
	Dir   int
	Flags uint16
	// Data is the expanded payload. It is chunked into the volume
	// only when FlagCompressed is set.
	Data []byte
	// ChunkSize overrides the chunk payload size. Zero uses the
	// default.
	ChunkSize int
	// ExpandedSize overrides the recorded expanded size. Zero
	// records len(Data).
	ExpandedSize uint32
	// MD5 overrides the recorded checksum. Nil records the digest
	// of Data for compressed files and all zeroes otherwise.
	MD5 *[16]byte
}

// Group describes one file group.
type Group struct {
	Name      string
	FirstFile uint32
	LastFile  uint32
}

// Component describes one component and the groups it references.
type Component struct {
	Name   string
	Groups []string
}

// Builder assembles a cabinet fixture.
type Builder struct {
	Dirs       []string
	Files      []File
	Groups     []Group
	Components []Component
}

// Build returns the header blob and the data volume.
func (b *Builder) Build() (hdr, data []byte) {
	dirCount := len(b.Dirs)
	table := make([]uint32, dirCount+len(b.Files))
	tableSize := 4 * len(table)

	// area holds everything the table entries point at. Offsets
	// within it are relative to the file table base once the table
	// itself is prepended.
	var area bytes.Buffer
	var vol bytes.Buffer

	for i, dir := range b.Dirs {
		table[i] = uint32(tableSize + area.Len())
		area.WriteString(dir)
		area.WriteByte(0)
	}

	for i, f := range b.Files {
		namePos := uint32(tableSize + area.Len())
		area.WriteString(f.Name)
		area.WriteByte(0)

		table[dirCount+i] = uint32(tableSize + area.Len())
		area.Write(fileRecord(f, namePos, &vol))
	}

	groupSlots := make([]uint32, len(b.Groups))
	for i, g := range b.Groups {
		groupSlots[i] = writeGroup(&area, tableSize, g)
	}

	compSlots := make([]uint32, len(b.Components))
	for i, c := range b.Components {
		compSlots[i] = writeComponent(&area, tableSize, c)
	}

	ftSize := uint32(tableSize + area.Len())

	blob := make([]byte, cdOff+ftOff, cdOff+ftOff+int(ftSize))
	putU32(blob[0x00:], 0x28635349)
	putU32(blob[0x04:], 0x01005000)
	putU32(blob[0x08:], 1)
	putU32(blob[0x0C:], cdOff)
	putU32(blob[0x10:], ftOff+ftSize)

	cd := blob[cdOff:]
	putU32(cd[0x0C:], ftOff)
	putU32(cd[0x14:], ftSize)
	putU32(cd[0x18:], ftSize)
	putU32(cd[0x1C:], uint32(dirCount))
	putU32(cd[0x28:], uint32(len(b.Files)))
	putU32(cd[0x2C:], ftOff)
	for i, slot := range groupSlots {
		putU32(cd[0x3E+4*i:], slot)
	}
	for i, slot := range compSlots {
		putU32(cd[0x15A+4*i:], slot)
	}

	for _, entry := range table {
		blob = binary.LittleEndian.AppendUint32(blob, entry)
	}
	blob = append(blob, area.Bytes()...)

	return blob, vol.Bytes()
}

// fileRecord serializes one 0x3A-byte descriptor record, appending the
// chunked payload to vol when the file is compressed.
func fileRecord(f File, namePos uint32, vol *bytes.Buffer) []byte {
	expanded := f.ExpandedSize
	if expanded == 0 {
		expanded = uint32(len(f.Data))
	}

	dirIndex := uint16(0xFFFF)
	if f.Dir >= 0 {
		dirIndex = uint16(f.Dir)
	}

	var dataOff, compressed uint32
	if f.Flags&FlagCompressed != 0 {
		dataOff = uint32(vol.Len())
		cw := chunk.NewWriterSize(vol, f.ChunkSize)
		if _, err := cw.Write(f.Data); err != nil {
			panic(err)
		}
		if err := cw.Close(); err != nil {
			panic(err)
		}
		compressed = uint32(vol.Len()) - dataOff
	}

	var sum [16]byte
	switch {
	case f.MD5 != nil:
		sum = *f.MD5
	case f.Flags&FlagCompressed != 0:
		sum = md5.Sum(f.Data) //nolint:gosec // cabinet checksums are MD5
	}

	rec := make([]byte, 0x3A)
	putU32(rec[0x00:], namePos)
	putU16(rec[0x04:], dirIndex)
	putU16(rec[0x08:], f.Flags)
	putU32(rec[0x0A:], expanded)
	putU32(rec[0x0E:], compressed)
	putU32(rec[0x26:], dataOff)
	copy(rec[0x2A:], sum[:])
	return rec
}

// writeGroup appends a group's name, descriptor block, and offset list
// to area and returns the descriptor-relative slot value.
func writeGroup(area *bytes.Buffer, tableSize int, g Group) uint32 {
	namePos := uint32(tableSize + area.Len())
	area.WriteString(g.Name)
	area.WriteByte(0)

	descPos := uint32(tableSize + area.Len())
	desc := make([]byte, 0x54)
	putU32(desc[0x4C:], g.FirstFile)
	putU32(desc[0x50:], g.LastFile)
	area.Write(desc)

	listPos := uint32(tableSize + area.Len())
	list := make([]byte, 12)
	putU32(list[0:], ftOff+namePos)
	putU32(list[4:], ftOff+descPos)
	area.Write(list)

	return ftOff + listPos
}

// writeComponent appends a component's strings, group table, descriptor
// block, and offset list to area and returns the descriptor-relative
// slot value.
func writeComponent(area *bytes.Buffer, tableSize int, c Component) uint32 {
	namePos := uint32(tableSize + area.Len())
	area.WriteString(c.Name)
	area.WriteByte(0)

	entries := make([]uint32, len(c.Groups))
	for i, group := range c.Groups {
		entries[i] = ftOff + uint32(tableSize+area.Len())
		area.WriteString(group)
		area.WriteByte(0)
	}

	tablePos := uint32(tableSize + area.Len())
	for _, entry := range entries {
		var buf [4]byte
		putU32(buf[:], entry)
		area.Write(buf[:])
	}

	descPos := uint32(tableSize + area.Len())
	desc := make([]byte, 0x76)
	putU16(desc[0x70:], uint16(len(c.Groups)))
	putU32(desc[0x72:], ftOff+tablePos)
	area.Write(desc)

	listPos := uint32(tableSize + area.Len())
	list := make([]byte, 12)
	putU32(list[0:], ftOff+namePos)
	putU32(list[4:], ftOff+descPos)
	area.Write(list)

	return ftOff + listPos
}

func putU16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

func putU32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// Source is an in-memory data volume.
type Source struct {
	data []byte
}

// NewSource returns a Source serving data.
func NewSource(data []byte) *Source {
	return &Source{data: data}
}

// ReadAt implements io.ReaderAt.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the volume length in bytes.
func (s *Source) Size() int64 {
	return int64(len(s.data))
}

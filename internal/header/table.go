package header

// FileFlags is the per-file flag word from the file descriptor record.
type FileFlags uint16

// File descriptor flag bits.
const (
	FileSplit FileFlags = 1 << iota
	FileObfuscated
	FileCompressed
	FileInvalid
)

// String renders the flag set in listing form, one letter per set
// flag, "-" when none are set.
func (f FileFlags) String() string {
	var s []byte
	if f&FileSplit != 0 {
		s = append(s, 'S')
	}
	if f&FileObfuscated != 0 {
		s = append(s, 'O')
	}
	if f&FileCompressed != 0 {
		s = append(s, 'C')
	}
	if f&FileInvalid != 0 {
		s = append(s, 'I')
	}
	if len(s) == 0 {
		return "-"
	}
	return string(s)
}

// File descriptor record layout (58 bytes, format version 5), field
// offsets relative to the record start. The 20 bytes between the
// compressed size and the data offset hold timestamps and attributes
// and are not modeled.
const (
	fdNameOffset     = 0x00
	fdDirIndex       = 0x04
	fdFlags          = 0x08
	fdExpandedSize   = 0x0A
	fdCompressedSize = 0x0E
	fdDataOffset     = 0x26
	fdMD5            = 0x2A

	md5Size = 16
)

// FileDescriptor is one resolved file entry. All fields are owned
// copies; nothing references the header buffer after Parse returns.
type FileDescriptor struct {
	// Index is the ordinal position in the file sequence.
	Index int

	// Name is the file name without its directory.
	Name string

	// DirIndex indexes Header.Dirs, or -1 when the record's directory
	// reference is out of range (the file is root-relative).
	DirIndex int

	Flags FileFlags

	// ExpandedSize is the decompressed content size in bytes.
	ExpandedSize uint32

	// CompressedSize is the stored chunk-stream size in bytes. It is
	// informational; extraction is bounded by ExpandedSize and the
	// stream terminators.
	CompressedSize uint32

	// DataOffset is the absolute offset of the chunk stream in the
	// data volume.
	DataOffset uint32

	// MD5 is the expected digest of the expanded content. All zero
	// means no checksum is recorded.
	MD5 [md5Size]byte
}

// Compressed reports whether the content is stored as a chunk stream
// in the data volume. Entries without this flag live as loose files
// next to the archive.
func (fd FileDescriptor) Compressed() bool {
	return fd.Flags&FileCompressed != 0
}

// Invalid reports whether the entry is marked invalid.
func (fd FileDescriptor) Invalid() bool {
	return fd.Flags&FileInvalid != 0
}

// Split reports whether the entry continues in another volume.
func (fd FileDescriptor) Split() bool {
	return fd.Flags&FileSplit != 0
}

// Obfuscated reports whether the entry is marked obfuscated.
func (fd FileDescriptor) Obfuscated() bool {
	return fd.Flags&FileObfuscated != 0
}

// HasChecksum reports whether a checksum is recorded for the entry.
func (fd FileDescriptor) HasChecksum() bool {
	return fd.MD5 != [md5Size]byte{}
}

// FileGroup is a named inclusive range of file indices. Groups are
// informational; extraction does not consult them.
type FileGroup struct {
	Name      string
	FirstFile int
	LastFile  int
}

// Component is a named set of file groups. Informational.
type Component struct {
	Name       string
	FileGroups []string
}

// Group descriptor field offsets (version 5).
const (
	grpFirstFile = 0x4C
	grpLastFile  = 0x50
)

// Component descriptor field offsets (version 5).
const (
	cmpGroupCount = 0x70
	cmpGroupTable = 0x72
)

// offsetList is the 3-field slot record that locates group and
// component descriptors. next chains further records in the same
// bucket; this reader takes the head entry only.
type offsetList struct {
	name uint32
	desc uint32
	next uint32
}

func readOffsetList(b *Buffer, at uint64) (offsetList, error) {
	var ol offsetList
	var err error
	if ol.name, err = b.U32(at); err != nil {
		return ol, err
	}
	if ol.desc, err = b.U32(at + 4); err != nil {
		return ol, err
	}
	if ol.next, err = b.U32(at + 8); err != nil {
		return ol, err
	}
	return ol, nil
}

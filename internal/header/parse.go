package header

import "fmt"

// Header is a fully parsed cabinet header.
type Header struct {
	Common     CommonHeader
	Desc       CabDescriptor
	Dirs       []string
	Files      []FileDescriptor
	Groups     []FileGroup
	Components []Component
}

// Parse decodes a complete cabinet header from data.
//
// Any failure is fatal: the catalog is either fully resolved or
// absent. Per-file conditions (missing checksums, out-of-range
// directory references) are represented in the descriptors, not as
// errors.
func Parse(data []byte) (*Header, error) {
	b := NewBuffer(data)

	common, err := parseCommonHeader(b)
	if err != nil {
		return nil, err
	}

	cdBase := uint64(common.DescriptorOffset)
	if cdBase > uint64(b.Len()) {
		return nil, fmt.Errorf("%w: cabinet descriptor at 0x%x", ErrOutOfBounds, cdBase)
	}
	desc, err := parseCabDescriptor(b, cdBase)
	if err != nil {
		return nil, fmt.Errorf("cabinet descriptor: %w", err)
	}

	ftBase := cdBase + uint64(desc.FileTableOffset)
	table, err := readFileTable(b, ftBase, uint64(desc.DirCount)+uint64(desc.FileCount))
	if err != nil {
		return nil, fmt.Errorf("file table: %w", err)
	}

	dirs, err := resolveDirs(b, ftBase, table, desc.DirCount)
	if err != nil {
		return nil, err
	}
	files, err := resolveFiles(b, ftBase, table[desc.DirCount:], desc.DirCount)
	if err != nil {
		return nil, err
	}
	groups, err := resolveGroups(b, cdBase, desc.GroupOffsets)
	if err != nil {
		return nil, err
	}
	components, err := resolveComponents(b, cdBase, desc.ComponentOffsets)
	if err != nil {
		return nil, err
	}

	return &Header{
		Common:     common,
		Desc:       desc,
		Dirs:       dirs,
		Files:      files,
		Groups:     groups,
		Components: components,
	}, nil
}

// readFileTable reads count relative offsets at base. The count is
// validated against the buffer size before allocation so a hostile
// header cannot demand an oversized table.
func readFileTable(b *Buffer, base, count uint64) ([]uint32, error) {
	if count > uint64(b.Len())/4 {
		return nil, fmt.Errorf("%w: %d table entries", ErrOutOfBounds, count)
	}
	table := make([]uint32, count)
	for i := range table {
		v, err := b.U32(base + uint64(i)*4)
		if err != nil {
			return nil, err
		}
		table[i] = v
	}
	return table, nil
}

func resolveDirs(b *Buffer, base uint64, table []uint32, dirCount uint32) ([]string, error) {
	dirs := make([]string, 0, dirCount)
	for _, off := range table[:dirCount] {
		name, err := b.CString(base + uint64(off))
		if err != nil {
			return nil, fmt.Errorf("directory %d: %w", len(dirs), err)
		}
		dirs = append(dirs, name)
	}
	return dirs, nil
}

func resolveFiles(b *Buffer, base uint64, entries []uint32, dirCount uint32) ([]FileDescriptor, error) {
	files := make([]FileDescriptor, 0, len(entries))
	for i, off := range entries {
		fd, err := resolveFile(b, base, off, i, dirCount)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", i, err)
		}
		files = append(files, fd)
	}
	return files, nil
}

func resolveFile(b *Buffer, base uint64, off uint32, index int, dirCount uint32) (FileDescriptor, error) {
	fd := FileDescriptor{Index: index}
	rec := base + uint64(off)

	nameOff, err := b.U32(rec + fdNameOffset)
	if err != nil {
		return fd, err
	}
	dirIdx, err := b.U16(rec + fdDirIndex)
	if err != nil {
		return fd, err
	}
	flags, err := b.U16(rec + fdFlags)
	if err != nil {
		return fd, err
	}
	fd.Flags = FileFlags(flags)
	if fd.ExpandedSize, err = b.U32(rec + fdExpandedSize); err != nil {
		return fd, err
	}
	if fd.CompressedSize, err = b.U32(rec + fdCompressedSize); err != nil {
		return fd, err
	}
	if fd.DataOffset, err = b.U32(rec + fdDataOffset); err != nil {
		return fd, err
	}
	sum, err := b.Bytes(rec+fdMD5, md5Size)
	if err != nil {
		return fd, err
	}
	copy(fd.MD5[:], sum)

	if fd.Name, err = b.CString(base + uint64(nameOff)); err != nil {
		return fd, err
	}

	// Out-of-range directory references mean "no directory", not an
	// error: the file is root-relative.
	fd.DirIndex = int(dirIdx)
	if uint32(dirIdx) >= dirCount {
		fd.DirIndex = -1
	}
	return fd, nil
}

func resolveGroups(b *Buffer, cdBase uint64, offsets []uint32) ([]FileGroup, error) {
	groups := make([]FileGroup, 0, len(offsets))
	for _, off := range offsets {
		ol, err := readOffsetList(b, cdBase+uint64(off))
		if err != nil {
			return nil, fmt.Errorf("file group at 0x%x: %w", off, err)
		}
		name, err := b.CString(cdBase + uint64(ol.name))
		if err != nil {
			return nil, fmt.Errorf("file group at 0x%x: %w", off, err)
		}
		first, err := b.U32(cdBase + uint64(ol.desc) + grpFirstFile)
		if err != nil {
			return nil, fmt.Errorf("file group %q: %w", name, err)
		}
		last, err := b.U32(cdBase + uint64(ol.desc) + grpLastFile)
		if err != nil {
			return nil, fmt.Errorf("file group %q: %w", name, err)
		}
		groups = append(groups, FileGroup{
			Name:      name,
			FirstFile: int(first),
			LastFile:  int(last),
		})
	}
	return groups, nil
}

func resolveComponents(b *Buffer, cdBase uint64, offsets []uint32) ([]Component, error) {
	components := make([]Component, 0, len(offsets))
	for _, off := range offsets {
		ol, err := readOffsetList(b, cdBase+uint64(off))
		if err != nil {
			return nil, fmt.Errorf("component at 0x%x: %w", off, err)
		}
		name, err := b.CString(cdBase + uint64(ol.name))
		if err != nil {
			return nil, fmt.Errorf("component at 0x%x: %w", off, err)
		}
		desc := cdBase + uint64(ol.desc)
		count, err := b.U16(desc + cmpGroupCount)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name, err)
		}
		tableOff, err := b.U32(desc + cmpGroupTable)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", name, err)
		}

		groups := make([]string, 0, count)
		for i := uint64(0); i < uint64(count); i++ {
			nameOff, err := b.U32(cdBase + uint64(tableOff) + i*4)
			if err != nil {
				return nil, fmt.Errorf("component %q group %d: %w", name, i, err)
			}
			groupName, err := b.CString(cdBase + uint64(nameOff))
			if err != nil {
				return nil, fmt.Errorf("component %q group %d: %w", name, i, err)
			}
			groups = append(groups, groupName)
		}
		components = append(components, Component{Name: name, FileGroups: groups})
	}
	return components, nil
}

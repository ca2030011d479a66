// Package header decodes InstallShield v5-family cabinet headers: the
// fixed common header, the cabinet descriptor, and the offset tables
// that resolve into directories, files, file groups, and components.
//
// The package owns the raw header buffer and all offset arithmetic.
// Parse either produces a fully resolved catalog of owned values or an
// error; no raw offset survives into the result.
package header

import "fmt"

// signature is the cabinet magic, "ISc(" in little-endian.
const signature = 0x28635349

// Common header field offsets.
const (
	chSignature        = 0x00
	chVersion          = 0x04
	chVolumeInfo       = 0x08
	chDescriptorOffset = 0x0C
	chDescriptorSize   = 0x10
)

// CommonHeader is the fixed 20-byte record at the start of the header
// file.
type CommonHeader struct {
	Signature        uint32
	Version          uint32
	VolumeInfo       uint32
	DescriptorOffset uint32
	DescriptorSize   uint32
}

// MajorVersion extracts the major format version from the packed
// version field.
func (h CommonHeader) MajorVersion() int {
	return int((h.Version >> 12) & 0xF)
}

func parseCommonHeader(b *Buffer) (CommonHeader, error) {
	var h CommonHeader
	var err error
	if h.Signature, err = b.U32(chSignature); err != nil {
		return h, err
	}
	if h.Signature != signature {
		return h, fmt.Errorf("%w: 0x%08x", ErrBadSignature, h.Signature)
	}
	if h.Version, err = b.U32(chVersion); err != nil {
		return h, err
	}
	if h.VolumeInfo, err = b.U32(chVolumeInfo); err != nil {
		return h, err
	}
	if h.DescriptorOffset, err = b.U32(chDescriptorOffset); err != nil {
		return h, err
	}
	if h.DescriptorSize, err = b.U32(chDescriptorSize); err != nil {
		return h, err
	}
	return h, nil
}

// Cabinet descriptor field offsets, relative to the descriptor base.
const (
	cdFileTableOffset  = 0x0C
	cdFileTableSize    = 0x14
	cdFileTableSize2   = 0x18
	cdDirCount         = 0x1C
	cdFileCount        = 0x28
	cdFileTableOffset2 = 0x2C
	cdGroupOffsets     = 0x3E
	cdComponentOffsets = 0x15A

	// offsetSlots is the fixed slot count of the group and component
	// offset arrays. The format has no record count, only this maximum;
	// unused slots hold zero.
	offsetSlots = 71
)

// CabDescriptor locates the file table and the group/component offset
// lists.
//
// GroupOffsets and ComponentOffsets hold only the live (non-zero)
// slots, so later stages never see the fixed-array sparsity.
type CabDescriptor struct {
	FileTableOffset  uint32
	FileTableSize    uint32
	FileTableSize2   uint32
	DirCount         uint32
	FileCount        uint32
	FileTableOffset2 uint32
	GroupOffsets     []uint32
	ComponentOffsets []uint32
}

func parseCabDescriptor(b *Buffer, base uint64) (CabDescriptor, error) {
	var d CabDescriptor
	var err error
	if d.FileTableOffset, err = b.U32(base + cdFileTableOffset); err != nil {
		return d, err
	}
	if d.FileTableSize, err = b.U32(base + cdFileTableSize); err != nil {
		return d, err
	}
	if d.FileTableSize2, err = b.U32(base + cdFileTableSize2); err != nil {
		return d, err
	}
	if d.DirCount, err = b.U32(base + cdDirCount); err != nil {
		return d, err
	}
	if d.FileCount, err = b.U32(base + cdFileCount); err != nil {
		return d, err
	}
	if d.FileTableOffset2, err = b.U32(base + cdFileTableOffset2); err != nil {
		return d, err
	}
	if d.GroupOffsets, err = readOffsetSlots(b, base+cdGroupOffsets); err != nil {
		return d, err
	}
	if d.ComponentOffsets, err = readOffsetSlots(b, base+cdComponentOffsets); err != nil {
		return d, err
	}
	return d, nil
}

// readOffsetSlots reads one fixed offset array, dropping zero slots.
func readOffsetSlots(b *Buffer, off uint64) ([]uint32, error) {
	var live []uint32
	for i := uint64(0); i < offsetSlots; i++ {
		v, err := b.U32(off + 4*i)
		if err != nil {
			return nil, err
		}
		if v != 0 {
			live = append(live, v)
		}
	}
	return live, nil
}

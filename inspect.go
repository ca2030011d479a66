package iscab

// Stats summarizes a cabinet catalog. Compressed, Loose, and Invalid
// partition the file count; Obfuscated overlaps them.
type Stats struct {
	Files      int
	Dirs       int
	Groups     int
	Components int

	Compressed int
	Loose      int
	Invalid    int
	Obfuscated int

	ExpandedBytes   int64
	CompressedBytes int64
}

// Stats returns catalog totals. They are computed on first use and
// cached.
func (c *Cabinet) Stats() Stats {
	c.statsOnce.Do(func() {
		s := Stats{
			Files:      len(c.hdr.Files),
			Dirs:       len(c.hdr.Dirs),
			Groups:     len(c.hdr.Groups),
			Components: len(c.hdr.Components),
		}
		for _, f := range c.hdr.Files {
			s.ExpandedBytes += int64(f.ExpandedSize)
			s.CompressedBytes += int64(f.CompressedSize)
			switch {
			case f.Invalid():
				s.Invalid++
			case f.Compressed():
				s.Compressed++
			default:
				s.Loose++
			}
			if f.Obfuscated() {
				s.Obfuscated++
			}
		}
		c.stats = s
	})
	return c.stats
}

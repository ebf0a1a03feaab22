package sectorfile

// Framer allocates contiguous byte ranges inside a sectored region
// without ever letting a record cross into a sector's checksum slot.
//
// Framer itself holds no byte data; it only does arithmetic over sector
// size and the region's current extent, which callers pass in.
type Framer struct {
	sectorSize       int64
	sectorDataLength int64
}

// NewFramer builds a Framer for the given sector size. sectorSize must
// be a power of two larger than ChecksumSize; callers construct this
// from validated configuration, so NewFramer does not itself return an
// error for a malformed size.
func NewFramer(sectorSize int64) *Framer {
	return &Framer{
		sectorSize:       sectorSize,
		sectorDataLength: sectorSize - ChecksumSize,
	}
}

// SectorSize returns the configured sector size.
func (f *Framer) SectorSize() int64 { return f.sectorSize }

// SectorStart returns the byte offset of the sector containing pos.
func (f *Framer) SectorStart(pos int64) int64 {
	return (pos / f.sectorSize) * f.sectorSize
}

// ChecksumOffset returns the offset of the checksum slot for the sector
// containing pos.
func (f *Framer) ChecksumOffset(pos int64) int64 {
	return f.SectorStart(pos) + f.sectorDataLength
}

// Claim returns the position at which a record of the given length
// should be placed, starting the search at currentPosition and never
// extending past limit (the region's current usable extent).
//
// If the record fits in the current sector's remaining data area, pos
// is returned unchanged. If it doesn't, Claim skips to the start of
// the next sector's data area. If it doesn't fit there either — because
// the next sector also lacks room, or the next sector's data area would
// start beyond limit — ErrOutOfSpace is returned.
func (f *Framer) Claim(currentPosition int64, length int64, limit int64) (int64, error) {
	if length > f.sectorDataLength {
		return 0, ErrRecordTooLarge
	}

	start := f.SectorStart(currentPosition)
	if currentPosition+length <= start+f.sectorDataLength && currentPosition+length <= limit {
		return currentPosition, nil
	}

	next := start + f.sectorSize
	if next+length > limit {
		return 0, ErrOutOfSpace
	}
	if next+length > next+f.sectorDataLength {
		return 0, ErrOutOfSpace
	}
	return next, nil
}

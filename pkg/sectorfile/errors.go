package sectorfile

import "errors"

// ErrRegionClosed is returned by Region operations after Close has been called.
var ErrRegionClosed = errors.New("sectorfile: region closed")

// ErrUnsupportedPlatform is returned by OpenRegion on platforms without
// a memory-mapped file implementation.
var ErrUnsupportedPlatform = errors.New("sectorfile: mapped regions are not supported on this platform")

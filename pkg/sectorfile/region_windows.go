//go:build windows

// region_windows.go stubs out mapped-region support on Windows.

package sectorfile

// MappedRegion is not supported on Windows.
type MappedRegion struct{}

// OpenRegion returns ErrUnsupportedPlatform on Windows.
func OpenRegion(_ string, _ int64) (*MappedRegion, error) {
	return nil, ErrUnsupportedPlatform
}

func (r *MappedRegion) Bytes() []byte                     { return nil }
func (r *MappedRegion) Size() int64                       { return 0 }
func (r *MappedRegion) Force() error                      { return ErrUnsupportedPlatform }
func (r *MappedRegion) TransferTo(_ SnapshotWriter) error { return ErrUnsupportedPlatform }
func (r *MappedRegion) ZeroFill()                         {}
func (r *MappedRegion) Grow(_ int64) error                { return ErrUnsupportedPlatform }
func (r *MappedRegion) Close() error                      { return nil }

var _ Region = (*MappedRegion)(nil)

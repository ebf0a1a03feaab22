//go:build !windows

// region_unix.go memory-maps the backing file via golang.org/x/sys/unix.

package sectorfile

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// MappedRegion is a Region backed by a Unix mmap'd file.
type MappedRegion struct {
	mu     sync.RWMutex
	file   *os.File
	data   []byte
	size   int64
	closed bool
}

// OpenRegion opens (or creates) the file at path and maps the first
// size bytes. If the file already exists and is larger than size, the
// existing size is honored instead so previously written data is not
// truncated away.
func OpenRegion(path string, size int64) (*MappedRegion, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sectorfile: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sectorfile: stat %s: %w", path, err)
	}

	mapSize := size
	if info.Size() > mapSize {
		mapSize = info.Size()
	}
	if info.Size() < mapSize {
		if err := f.Truncate(mapSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("sectorfile: truncate %s: %w", path, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(mapSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sectorfile: mmap %s: %w", path, err)
	}

	return &MappedRegion{file: f, data: data, size: mapSize}, nil
}

// Bytes implements Region.
func (r *MappedRegion) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Size implements Region.
func (r *MappedRegion) Size() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Force implements Region. It uses MS_SYNC so the call only returns
// once dirty pages are durable, matching the engine's synchronous
// write-then-force contract.
func (r *MappedRegion) Force() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRegionClosed
	}
	if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("sectorfile: msync: %w", err)
	}
	return nil
}

// TransferTo implements Region by copying the live mapped bytes to w.
func (r *MappedRegion) TransferTo(w SnapshotWriter) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, err := w.Write(r.data)
	return err
}

// ZeroFill implements Region.
func (r *MappedRegion) ZeroFill() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.data {
		r.data[i] = 0
	}
}

// Grow extends the mapped region to newSize, remapping as needed. It is
// an explicit administrative operation; claim failures reported as
// ErrOutOfSpace do not trigger it automatically.
func (r *MappedRegion) Grow(newSize int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if newSize <= r.size {
		return nil
	}

	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("sectorfile: munmap: %w", err)
	}
	if err := r.file.Truncate(newSize); err != nil {
		return fmt.Errorf("sectorfile: truncate: %w", err)
	}
	data, err := unix.Mmap(int(r.file.Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("sectorfile: mmap: %w", err)
	}
	r.data = data
	r.size = newSize
	return nil
}

// Close implements Region.
func (r *MappedRegion) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	_ = unix.Msync(r.data, unix.MS_SYNC)
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("sectorfile: munmap: %w", err)
	}
	r.data = nil

	if err := r.file.Close(); err != nil {
		return fmt.Errorf("sectorfile: close: %w", err)
	}
	return nil
}

var _ Region = (*MappedRegion)(nil)

// Package identity serializes and parses the composite key that names a
// counterparty session. The directory engine treats the key only as a
// comparable map key and a byte blob; field layout is owned here.
package identity

import "errors"

// ErrInsufficientSpace is returned by Strategy.Save when scratch is too
// small to hold the serialized key.
var ErrInsufficientSpace = errors.New("identity: insufficient space")

// Strategy serializes and parses the composite identity key.
type Strategy interface {
	// Save writes key into scratch starting at offset and returns the
	// number of bytes written. It returns ErrInsufficientSpace if
	// scratch[offset:] is too small.
	Save(key Key, scratch []byte, offset int) (length int, err error)

	// Load parses a key from buf[offset:offset+length]. It returns
	// ok=false if the tail is malformed (truncated field, negative
	// length, etc.), signaling a corrupt record to the caller.
	Load(buf []byte, offset, length int) (key Key, ok bool)
}

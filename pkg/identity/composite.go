package identity

import "encoding/binary"

// Key is the classic FIX composite session key: the four comp/sub ID
// fields that together name one counterparty session. Key is
// comparable, so it can be used directly as a map key by the directory
// engine's by_key index.
type Key struct {
	SenderCompID string
	TargetCompID string
	SenderSubID  string
	TargetSubID  string
}

// CompositeKeyStrategy is the default Strategy: each field is written
// length-prefixed (uint16) and concatenated in a fixed field order.
type CompositeKeyStrategy struct{}

// NewCompositeKeyStrategy returns the default identity strategy.
func NewCompositeKeyStrategy() CompositeKeyStrategy { return CompositeKeyStrategy{} }

// Save implements Strategy.
func (CompositeKeyStrategy) Save(key Key, scratch []byte, offset int) (int, error) {
	fields := [4]string{key.SenderCompID, key.TargetCompID, key.SenderSubID, key.TargetSubID}

	needed := 0
	for _, f := range fields {
		needed += 2 + len(f)
	}
	if offset+needed > len(scratch) {
		return 0, ErrInsufficientSpace
	}

	pos := offset
	for _, f := range fields {
		binary.LittleEndian.PutUint16(scratch[pos:pos+2], uint16(len(f)))
		pos += 2
		copy(scratch[pos:pos+len(f)], f)
		pos += len(f)
	}

	return pos - offset, nil
}

// Load implements Strategy.
func (CompositeKeyStrategy) Load(buf []byte, offset, length int) (Key, bool) {
	end := offset + length
	if end > len(buf) || length < 0 {
		return Key{}, false
	}

	pos := offset
	var fields [4]string
	for i := range fields {
		if pos+2 > end {
			return Key{}, false
		}
		n := int(binary.LittleEndian.Uint16(buf[pos : pos+2]))
		pos += 2
		if n < 0 || pos+n > end {
			return Key{}, false
		}
		fields[i] = string(buf[pos : pos+n])
		pos += n
	}
	if pos != end {
		return Key{}, false
	}

	return Key{
		SenderCompID: fields[0],
		TargetCompID: fields[1],
		SenderSubID:  fields[2],
		TargetSubID:  fields[3],
	}, true
}

var _ Strategy = CompositeKeyStrategy{}

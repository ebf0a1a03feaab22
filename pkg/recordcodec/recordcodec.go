// Package recordcodec defines the injected wire layout for one directory
// record: a fixed-size prefix followed by the variable-length identity
// blob the directory engine treats as opaque.
package recordcodec

import "errors"

// ErrCorrupt is returned by DecodeAt when the prefix bytes cannot be
// interpreted as a well-formed record (but session_id != 0, so it is
// not simply an empty slot).
var ErrCorrupt = errors.New("recordcodec: corrupt record prefix")

// UnknownSequenceIndex is the sentinel for a sequence index that has
// never been observed.
const UnknownSequenceIndex int32 = -1

// UnknownTime is the sentinel for a logon/reset time that has never
// been observed.
const UnknownTime int64 = -1 << 63

// Fields is the fixed-prefix payload of one directory record. The
// composite key bytes that follow the prefix are owned by the identity
// strategy, not the codec.
type Fields struct {
	SessionID             uint64
	SequenceIndex         int32
	LogonTime             int64
	LastSequenceResetTime int64
	CompositeKeyLength    uint16
	DictionaryName        string
}

// Codec encodes and decodes the fixed prefix of a directory record. The
// directory engine owns sector framing and checksums; a Codec only
// knows how to lay out one record's prefix fields.
//
// DecodeAt reading an all-zero region must yield Fields{SessionID: 0},
// the empty-slot sentinel the engine uses to detect the end of the
// written log during recovery.
type Codec interface {
	// BlockLength is the fixed size in bytes of the prefix this codec
	// writes, not including the variable composite-key blob.
	BlockLength() int

	// SchemaID, TemplateID, SchemaVersion identify the codec's wire
	// format; they are written into the file header when a fresh file is
	// initialized. The directory engine does not compare them on reopen.
	SchemaID() uint16
	TemplateID() uint16
	SchemaVersion() uint16

	// EncodeAt writes f's prefix fields into buf starting at offset.
	// len(buf) must be >= offset+BlockLength().
	EncodeAt(buf []byte, offset int64, f Fields) error

	// DecodeAt reads a prefix from buf starting at offset, honoring an
	// acting block length and schema version read from the header (for
	// forward/backward compatible reads); actingBlockLength/Version of
	// zero mean "use the codec's own".
	DecodeAt(buf []byte, offset int64, actingBlockLength int, actingVersion uint16) (Fields, error)
}

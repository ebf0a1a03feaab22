package recordcodec

import "encoding/binary"

const (
	binarySchemaID      uint16 = 1
	binaryTemplateID    uint16 = 1
	binarySchemaVersion uint16 = 1

	// dictionaryNameCapacity bounds the fixed-size dictionary-name field
	// carried inside the prefix; names longer than this are truncated.
	dictionaryNameCapacity = 32

	// BinaryBlockLength is the fixed prefix size: session_id(8) +
	// sequence_index(4) + logon_time(8) + last_sequence_reset_time(8) +
	// composite_key_length(2) + dictionary_name_length(2) +
	// dictionary_name(32).
	BinaryBlockLength = 8 + 4 + 8 + 8 + 2 + 2 + dictionaryNameCapacity
)

// BinaryCodec is the default Codec, a fixed little-endian layout built
// on encoding/binary.
type BinaryCodec struct{}

// NewBinaryCodec returns the default record codec.
func NewBinaryCodec() BinaryCodec { return BinaryCodec{} }

func (BinaryCodec) BlockLength() int      { return BinaryBlockLength }
func (BinaryCodec) SchemaID() uint16      { return binarySchemaID }
func (BinaryCodec) TemplateID() uint16    { return binaryTemplateID }
func (BinaryCodec) SchemaVersion() uint16 { return binarySchemaVersion }

// EncodeAt implements Codec.
func (BinaryCodec) EncodeAt(buf []byte, offset int64, f Fields) error {
	b := buf[offset : offset+BinaryBlockLength]

	binary.LittleEndian.PutUint64(b[0:8], f.SessionID)
	binary.LittleEndian.PutUint32(b[8:12], uint32(f.SequenceIndex))
	binary.LittleEndian.PutUint64(b[12:20], uint64(f.LogonTime))
	binary.LittleEndian.PutUint64(b[20:28], uint64(f.LastSequenceResetTime))
	binary.LittleEndian.PutUint16(b[28:30], f.CompositeKeyLength)

	name := f.DictionaryName
	if len(name) > dictionaryNameCapacity {
		name = name[:dictionaryNameCapacity]
	}
	binary.LittleEndian.PutUint16(b[30:32], uint16(len(name)))
	for i := 32; i < 32+dictionaryNameCapacity; i++ {
		b[i] = 0
	}
	copy(b[32:32+dictionaryNameCapacity], name)

	return nil
}

// DecodeAt implements Codec. An actingBlockLength of zero means this
// codec's own; a smaller one is rejected with ErrCorrupt and a larger one
// is accepted, with the bytes past BinaryBlockLength ignored.
// actingVersion is not read.
func (c BinaryCodec) DecodeAt(buf []byte, offset int64, actingBlockLength int, actingVersion uint16) (Fields, error) {
	blockLength := actingBlockLength
	if blockLength == 0 {
		blockLength = BinaryBlockLength
	}
	if blockLength < BinaryBlockLength {
		return Fields{}, ErrCorrupt
	}
	if offset < 0 || offset+int64(blockLength) > int64(len(buf)) {
		return Fields{}, ErrCorrupt
	}

	b := buf[offset : offset+int64(blockLength)]

	var f Fields
	f.SessionID = binary.LittleEndian.Uint64(b[0:8])
	if f.SessionID == 0 {
		// Empty slot: per Codec contract, return the sentinel with no
		// further interpretation of the remaining (zero) bytes.
		return f, nil
	}

	f.SequenceIndex = int32(binary.LittleEndian.Uint32(b[8:12]))
	f.LogonTime = int64(binary.LittleEndian.Uint64(b[12:20]))
	f.LastSequenceResetTime = int64(binary.LittleEndian.Uint64(b[20:28]))
	f.CompositeKeyLength = binary.LittleEndian.Uint16(b[28:30])

	nameLen := binary.LittleEndian.Uint16(b[30:32])
	if int(nameLen) > dictionaryNameCapacity {
		return Fields{}, ErrCorrupt
	}
	f.DictionaryName = string(b[32 : 32+int(nameLen)])

	return f, nil
}

var _ Codec = BinaryCodec{}

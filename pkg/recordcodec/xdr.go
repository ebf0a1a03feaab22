package recordcodec

import (
	"bytes"

	xdr "github.com/rasky/go-xdr/xdr2"
)

const (
	xdrSchemaID      uint16 = 2
	xdrTemplateID    uint16 = 1
	xdrSchemaVersion uint16 = 1

	// xdrBlockLength is sized generously for the XDR-encoded prefix,
	// which pads strings and hypers to 4-byte boundaries; unused tail
	// bytes within the block are left zero.
	xdrBlockLength = 96
)

// xdrPrefix is the XDR wire shape of one record's fixed prefix. Field
// order and types are XDR-native (hyper for 64-bit, unsigned int for
// lengths) so the encoding is self-describing across implementations
// of this codec, not just this process.
type xdrPrefix struct {
	SessionID             uint64
	SequenceIndex         int32
	LogonTime             int64
	LastSequenceResetTime int64
	CompositeKeyLength    uint32
	DictionaryName        string
}

// XDRCodec is an alternate Codec built on the external XDR (RFC 4506)
// implementation, demonstrating that the sector framer and directory
// engine are codec-agnostic.
type XDRCodec struct{}

// NewXDRCodec returns the XDR-based record codec.
func NewXDRCodec() XDRCodec { return XDRCodec{} }

func (XDRCodec) BlockLength() int      { return xdrBlockLength }
func (XDRCodec) SchemaID() uint16      { return xdrSchemaID }
func (XDRCodec) TemplateID() uint16    { return xdrTemplateID }
func (XDRCodec) SchemaVersion() uint16 { return xdrSchemaVersion }

// EncodeAt implements Codec.
func (XDRCodec) EncodeAt(buf []byte, offset int64, f Fields) error {
	p := xdrPrefix{
		SessionID:             f.SessionID,
		SequenceIndex:         f.SequenceIndex,
		LogonTime:             f.LogonTime,
		LastSequenceResetTime: f.LastSequenceResetTime,
		CompositeKeyLength:    uint32(f.CompositeKeyLength),
		DictionaryName:        f.DictionaryName,
	}

	var scratch bytes.Buffer
	if _, err := xdr.Marshal(&scratch, &p); err != nil {
		return err
	}
	if scratch.Len() > xdrBlockLength {
		return ErrCorrupt
	}

	dst := buf[offset : offset+xdrBlockLength]
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, scratch.Bytes())
	return nil
}

// DecodeAt implements Codec.
func (XDRCodec) DecodeAt(buf []byte, offset int64, actingBlockLength int, actingVersion uint16) (Fields, error) {
	blockLength := actingBlockLength
	if blockLength == 0 {
		blockLength = xdrBlockLength
	}
	if offset < 0 || offset+int64(blockLength) > int64(len(buf)) {
		return Fields{}, ErrCorrupt
	}

	src := buf[offset : offset+int64(blockLength)]

	// An empty slot is all zero bytes; the first 8 bytes (SessionID) are
	// enough to detect it without round-tripping through the decoder.
	allZero := true
	for _, b := range src[:8] {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return Fields{}, nil
	}

	var p xdrPrefix
	if _, err := xdr.Unmarshal(bytes.NewReader(src), &p); err != nil {
		return Fields{}, ErrCorrupt
	}
	if p.SessionID == 0 {
		return Fields{}, nil
	}

	return Fields{
		SessionID:             p.SessionID,
		SequenceIndex:         p.SequenceIndex,
		LogonTime:             p.LogonTime,
		LastSequenceResetTime: p.LastSequenceResetTime,
		CompositeKeyLength:    uint16(p.CompositeKeyLength),
		DictionaryName:        p.DictionaryName,
	}, nil
}

var _ Codec = XDRCodec{}

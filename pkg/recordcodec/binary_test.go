package recordcodec

import "testing"

func TestBinaryCodec_RoundTrip(t *testing.T) {
	c := NewBinaryCodec()
	buf := make([]byte, BinaryBlockLength)

	want := Fields{
		SessionID:             42,
		SequenceIndex:         7,
		LogonTime:             1700000000000,
		LastSequenceResetTime: UnknownTime,
		CompositeKeyLength:    16,
		DictionaryName:        "FIX.4.4",
	}

	if err := c.EncodeAt(buf, 0, want); err != nil {
		t.Fatalf("EncodeAt() error = %v", err)
	}

	got, err := c.DecodeAt(buf, 0, 0, 0)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if got != want {
		t.Errorf("DecodeAt() = %+v, want %+v", got, want)
	}
}

func TestBinaryCodec_EmptySlotSentinel(t *testing.T) {
	c := NewBinaryCodec()
	buf := make([]byte, BinaryBlockLength)

	got, err := c.DecodeAt(buf, 0, 0, 0)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if got.SessionID != 0 {
		t.Errorf("DecodeAt() on zero buffer = %+v, want SessionID 0", got)
	}
}

func TestBinaryCodec_DecodeAtShortBufferReturnsCorrupt(t *testing.T) {
	c := NewBinaryCodec()
	buf := make([]byte, BinaryBlockLength-1)

	_, err := c.DecodeAt(buf, 0, 0, 0)
	if err != ErrCorrupt {
		t.Fatalf("DecodeAt() error = %v, want ErrCorrupt", err)
	}
}

func TestBinaryCodec_DictionaryNameTruncation(t *testing.T) {
	c := NewBinaryCodec()
	buf := make([]byte, BinaryBlockLength)

	long := "this-dictionary-name-is-way-too-long-for-the-field"
	err := c.EncodeAt(buf, 0, Fields{SessionID: 1, DictionaryName: long})
	if err != nil {
		t.Fatalf("EncodeAt() error = %v", err)
	}

	got, err := c.DecodeAt(buf, 0, 0, 0)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if len(got.DictionaryName) != dictionaryNameCapacity {
		t.Errorf("DictionaryName len = %d, want %d", len(got.DictionaryName), dictionaryNameCapacity)
	}
}

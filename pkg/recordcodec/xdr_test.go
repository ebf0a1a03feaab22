package recordcodec

import "testing"

func TestXDRCodec_RoundTrip(t *testing.T) {
	c := NewXDRCodec()
	buf := make([]byte, xdrBlockLength)

	want := Fields{
		SessionID:             9,
		SequenceIndex:         3,
		LogonTime:             1700000000000,
		LastSequenceResetTime: UnknownTime,
		CompositeKeyLength:    12,
		DictionaryName:        "FIX.4.2",
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

func TestXDRCodec_DecodeAtShortBufferReturnsCorrupt(t *testing.T) {
	c := NewXDRCodec()
	buf := make([]byte, xdrBlockLength-1)

	_, err := c.DecodeAt(buf, 0, 0, 0)
	if err != ErrCorrupt {
		t.Fatalf("DecodeAt() error = %v, want ErrCorrupt", err)
	}
}

func TestXDRCodec_EmptySlotSentinel(t *testing.T) {
	c := NewXDRCodec()
	buf := make([]byte, xdrBlockLength)

	got, err := c.DecodeAt(buf, 0, 0, 0)
	if err != nil {
		t.Fatalf("DecodeAt() error = %v", err)
	}
	if got.SessionID != 0 {
		t.Errorf("DecodeAt() on zero buffer = %+v, want SessionID 0", got)
	}
}

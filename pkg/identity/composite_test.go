package identity

import "testing"

func TestCompositeKeyStrategy_RoundTrip(t *testing.T) {
	s := NewCompositeKeyStrategy()
	key := Key{SenderCompID: "BANKA", TargetCompID: "BANKB", SenderSubID: "TRADING", TargetSubID: ""}

	scratch := make([]byte, 256)
	n, err := s.Save(key, scratch, 10)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := s.Load(scratch, 10, n)
	if !ok {
		t.Fatalf("Load() ok = false, want true")
	}
	if got != key {
		t.Errorf("Load() = %+v, want %+v", got, key)
	}
}

func TestCompositeKeyStrategy_InsufficientSpace(t *testing.T) {
	s := NewCompositeKeyStrategy()
	key := Key{SenderCompID: "BANKA", TargetCompID: "BANKB"}

	scratch := make([]byte, 4)
	_, err := s.Save(key, scratch, 0)
	if err != ErrInsufficientSpace {
		t.Errorf("Save() error = %v, want ErrInsufficientSpace", err)
	}
}

func TestCompositeKeyStrategy_LoadMalformedTail(t *testing.T) {
	s := NewCompositeKeyStrategy()

	scratch := make([]byte, 16)
	// Claims a field of length 200 that doesn't fit.
	scratch[0] = 200
	scratch[1] = 0

	_, ok := s.Load(scratch, 0, 16)
	if ok {
		t.Error("Load() ok = true, want false for truncated field")
	}
}

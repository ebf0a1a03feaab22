package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)
	mu.Lock()
	original := output
	output = buf
	mu.Unlock()
	reconfigure()

	return buf, func() {
		mu.Lock()
		output = original
		mu.Unlock()
		reconfigure()
	}
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Info("should be filtered")
	Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("Info logged at WARN level, want filtered")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("Warn not logged at WARN level")
	}
}

func TestSetFormatJSON(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	Info("hello", "session_id", int64(7))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v, got %q", err, buf.String())
	}
	if decoded["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", decoded["msg"])
	}
	if decoded["session_id"] != float64(7) {
		t.Errorf("session_id = %v, want 7", decoded["session_id"])
	}
}

func TestInfoCtxPrependsLogContext(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	lc := NewLogContext("on_logon").WithSession(3, "BANKA", "BANKB")
	ctx := WithContext(t.Context(), lc)
	InfoCtx(ctx, "assigned session")

	out := buf.String()
	if !strings.Contains(out, "session_id=3") {
		t.Errorf("output = %q, want session_id=3", out)
	}
	if !strings.Contains(out, "sender_comp_id=BANKA") {
		t.Errorf("output = %q, want sender_comp_id=BANKA", out)
	}
}

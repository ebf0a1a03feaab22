package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.dat")

	w, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("file contents = %q, want %q", data, "hello")
	}
}

func TestOpen_S3URIRequiresBucketAndKey(t *testing.T) {
	if _, err := Open(context.Background(), "s3:///missing-bucket"); err == nil {
		t.Error("Open() error = nil, want error for missing bucket/key")
	}
}

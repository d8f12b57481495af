package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCappedFileStartsOverAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.log")
	w, err := newCappedFile(path, 1)
	if err != nil {
		t.Fatalf("newCappedFile: %v", err)
	}
	defer w.Close()

	// Force a tiny cap so two writes cross it.
	w.cap = 32

	first := bytes.Repeat([]byte("a"), 24)
	second := bytes.Repeat([]byte("b"), 24)
	if _, err := w.Write(first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write(second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !bytes.Equal(data, second) {
		t.Fatalf("expected file to contain only the second write, got %d bytes", len(data))
	}
}

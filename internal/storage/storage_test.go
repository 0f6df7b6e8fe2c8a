package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetGetDeleteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "storage.json", time.Second)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.Set(KeyToken, "tok-123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := s.Get(KeyToken); !ok || v != "tok-123" {
		t.Fatalf("expected tok-123, got %q ok=%v", v, ok)
	}

	if err := s.Delete(KeyToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Get(KeyToken); ok {
		t.Fatalf("expected key removed")
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "storage.json", time.Second)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyEmail, "user@example.com"); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened, err := Open(dir, "storage.json", time.Second)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok := reopened.Get(KeyEmail); !ok || v != "user@example.com" {
		t.Fatalf("expected persisted email, got %q ok=%v", v, ok)
	}
}

func TestCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")
	if err := os.WriteFile(path, []byte("{{{"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := Open(dir, "storage.json", time.Second)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := s.Get(KeyToken); ok {
		t.Fatalf("corrupt file must read as empty")
	}
}

func TestWatchFiresOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "storage.json", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(KeyToken, "initial"); err != nil {
		t.Fatalf("set: %v", err)
	}

	done := make(chan struct{})
	defer close(done)
	ch := s.Watch(done)

	// Simulate another tab by writing through a second store handle. A
	// fresh mtime in the future guards against coarse filesystem clocks.
	other, err := Open(dir, "storage.json", time.Second)
	if err != nil {
		t.Fatalf("open second handle: %v", err)
	}
	if err := other.Set(KeyToken, "changed"); err != nil {
		t.Fatalf("external set: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(filepath.Join(dir, "storage.json"), future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected watch notification")
	}

	if v, _ := s.Get(KeyToken); v != "changed" {
		t.Fatalf("expected reloaded value, got %q", v)
	}
}

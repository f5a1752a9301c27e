package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissingFileHasNoValue(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	_, ok, err := s.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected no value for missing file")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "prefs.json")
	if err := NewFileStore(path).Set("theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := NewFileStore(path).Get("theme")
	if err != nil || !ok || v != "light" {
		t.Fatalf("got (%q, %v, %v), want (light, true, nil)", v, ok, err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := NewFileStore(path).Get("theme"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMemoryCountsWrites(t *testing.T) {
	m := NewMemory()
	_ = m.Set("theme", "dark")
	if m.Writes() != 1 {
		t.Fatalf("writes = %d, want 1", m.Writes())
	}
}

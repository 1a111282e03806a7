package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cadence-audio/cadence/internal/store"
)

func newImportScanner(t *testing.T) (*Scanner, *store.Store) {
	t.Helper()
	st := openTestStore(t)
	return NewScanner(st), st
}

func TestImport_CopiesAndRegisters(t *testing.T) {
	scanner, st := newImportScanner(t)
	srcDir := t.TempDir()
	destRoot := t.TempDir()

	src := filepath.Join(srcDir, "episode.mp3")
	if err := os.WriteFile(src, []byte("not really audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := scanner.Import(context.Background(), src, destRoot, false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	// Untagged file lands directly under the root
	want := filepath.Join(destRoot, "episode.mp3")
	if res.DestPath != want {
		t.Errorf("DestPath = %q, want %q", res.DestPath, want)
	}
	if _, err := os.Stat(res.DestPath); err != nil {
		t.Errorf("imported file missing: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("copy mode should keep the source: %v", err)
	}

	tr, err := st.TrackByPath(res.DestPath)
	if err != nil {
		t.Fatal(err)
	}
	if tr == nil {
		t.Fatal("imported track not registered")
	}
}

func TestImport_MoveRemovesSource(t *testing.T) {
	scanner, _ := newImportScanner(t)
	srcDir := t.TempDir()
	destRoot := t.TempDir()

	src := filepath.Join(srcDir, "episode.mp3")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := scanner.Import(context.Background(), src, destRoot, true)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !res.Moved {
		t.Error("Moved = false, want true")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("move mode should remove the source, got %v", err)
	}
}

func TestImport_RejectsUnsupportedFormat(t *testing.T) {
	scanner, _ := newImportScanner(t)
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := scanner.Import(context.Background(), src, t.TempDir(), false); err == nil {
		t.Error("Import should reject unsupported formats")
	}
}

func TestImport_MissingSource(t *testing.T) {
	scanner, _ := newImportScanner(t)
	src := filepath.Join(t.TempDir(), "gone.mp3")

	if _, err := scanner.Import(context.Background(), src, t.TempDir(), false); err == nil {
		t.Error("Import should fail on a missing source")
	}
}

func TestSanitizePathComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC", "AC-DC"},
		{"Who? What!", "Who What!"},
		{"  spaced  ", "spaced"},
		{"trailing.", "trailing"},
		{"normal", "normal"},
	}
	for _, tt := range tests {
		if got := sanitizePathComponent(tt.in); got != tt.want {
			t.Errorf("sanitizePathComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	err := errors.New("disk full")
	got := Format(OpPlaylistCreate, err)
	want := "Failed to create playlist: disk full"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_NilError(t *testing.T) {
	if got := Format(OpLibraryScan, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestFormatWith(t *testing.T) {
	err := errors.New("not found")
	got := FormatWith(OpPlaylistStart, "Morning Mix", err)
	want := "Failed to start playlist 'Morning Mix': not found"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}
}

func TestFormatWith_EmptyContext(t *testing.T) {
	err := errors.New("boom")
	if got, want := FormatWith(OpPlaybackSeek, "", err), Format(OpPlaybackSeek, err); got != want {
		t.Errorf("FormatWith empty context = %q, want %q", got, want)
	}
}

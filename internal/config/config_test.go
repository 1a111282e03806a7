package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if !cfg.Continuous() {
		t.Error("Continuous() default should be true")
	}
	if cfg.SkipInterval() != 15*time.Second {
		t.Errorf("SkipInterval() = %v, want 15s", cfg.SkipInterval())
	}
	if cfg.TickForeground() != time.Second {
		t.Errorf("TickForeground() = %v, want 1s", cfg.TickForeground())
	}
	if cfg.TickBackground() != 5*time.Second {
		t.Errorf("TickBackground() = %v, want 5s", cfg.TickBackground())
	}
	if cfg.Rate() != 1.0 {
		t.Errorf("Rate() = %v, want 1.0", cfg.Rate())
	}
}

func TestContinuous_Explicit(t *testing.T) {
	off := false
	cfg := &Config{Playback: PlaybackConfig{Continuous: &off}}

	if cfg.Continuous() {
		t.Error("Continuous() should be false when set to false")
	}
}

func TestSkipInterval_Custom(t *testing.T) {
	cfg := &Config{Playback: PlaybackConfig{SkipIntervalSec: 30}}

	if cfg.SkipInterval() != 30*time.Second {
		t.Errorf("SkipInterval() = %v, want 30s", cfg.SkipInterval())
	}
}

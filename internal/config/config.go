package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibraryRoots []string `koanf:"library_roots"` // directories scanned for audio files

	Playback PlaybackConfig `koanf:"playback"`
	Log      LogConfig      `koanf:"log"`
}

// PlaybackConfig holds transport and position-reporting settings.
type PlaybackConfig struct {
	Continuous       *bool   `koanf:"continuous"`         // auto-advance on natural end (default: true)
	SkipIntervalSec  int     `koanf:"skip_interval_sec"`  // skip forward/backward step (default: 15)
	TickForegroundMS int     `koanf:"tick_foreground_ms"` // position poll interval (default: 1000)
	TickBackgroundMS int     `koanf:"tick_background_ms"` // poll interval when backgrounded (default: 5000)
	Rate             float64 `koanf:"rate"`               // initial playback rate (default: 1.0)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Output string `koanf:"output"` // "stderr", "stdout", or a file path
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in library roots
	for i, root := range cfg.LibraryRoots {
		cfg.LibraryRoots[i] = expandPath(root)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/cadence/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadence", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Continuous reports whether natural track end should auto-advance.
func (c *Config) Continuous() bool {
	if c.Playback.Continuous == nil {
		return true
	}
	return *c.Playback.Continuous
}

// SkipInterval returns the skip step with the default applied.
func (c *Config) SkipInterval() time.Duration {
	if c.Playback.SkipIntervalSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Playback.SkipIntervalSec) * time.Second
}

// TickForeground returns the foreground position poll interval.
func (c *Config) TickForeground() time.Duration {
	if c.Playback.TickForegroundMS <= 0 {
		return time.Second
	}
	return time.Duration(c.Playback.TickForegroundMS) * time.Millisecond
}

// TickBackground returns the backgrounded position poll interval.
func (c *Config) TickBackground() time.Duration {
	if c.Playback.TickBackgroundMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Playback.TickBackgroundMS) * time.Millisecond
}

// Rate returns the initial playback rate with the default applied.
func (c *Config) Rate() float64 {
	if c.Playback.Rate <= 0 {
		return 1.0
	}
	return c.Playback.Rate
}

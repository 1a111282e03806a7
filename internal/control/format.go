package control

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/store"
)

// parsePosition accepts plain seconds ("90"), minute:second ("1:30"),
// or a Go duration ("2m10s").
func parsePosition(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		mins, err1 := strconv.Atoi(parts[0])
		secs, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || mins < 0 || secs < 0 || secs > 59 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		return time.Duration(mins)*time.Minute + time.Duration(secs)*time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return d, nil
}

// formatPosition renders a duration as m:ss, or h:mm:ss past the hour.
func formatPosition(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func describeTrack(t playback.Track) string {
	if t.Title == "" {
		return filepath.Base(t.Path)
	}
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

func describeStoreTrack(t store.Track) string {
	return describeTrack(playback.Track{
		Path:   t.Path,
		Title:  t.Title,
		Artist: t.Artist,
	})
}

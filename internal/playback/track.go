package playback

import "time"

// Track identifies one playable item handed to the engine. This is a
// copy of the stored data, not a reference into the store.
type Track struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Duration    time.Duration
	Offset      time.Duration // stored position Load seeks to
}

package playback

import "time"

// Status is the engine's published observable state. It changes only
// through the engine's documented operations.
type Status struct {
	Playing  bool
	Track    *Track
	Position time.Duration
	Duration time.Duration
	Rate     float64
}

// StateChange is emitted when the playing flag flips.
type StateChange struct {
	Playing bool
}

// TrackChange is emitted when a different track is loaded, and with a
// nil Current when playback stops entirely.
type TrackChange struct {
	Previous *Track
	Current  *Track
}

// PositionChange is emitted by the position ticker when published time
// has drifted past the coalescing threshold, and on every explicit seek.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an operation fails.
type ErrorEvent struct {
	Operation string // e.g. "load", "decode"
	Path      string // track path if applicable
	Err       error
}

package player

import (
	"time"
)

// Finish reports the end of a session's stream. Err is non-nil when the
// decoder failed mid-stream; a nil Err means the stream reached its
// natural end.
type Finish struct {
	Err error
}

// Interface defines the session contract for dependency injection and
// testing.
type Interface interface {
	Load(path string) error
	Play()
	Pause()
	Stop()
	State() State
	Path() string
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration)
	SetRate(rate float64)
	Rate() float64
	Finished() <-chan Finish
}

// Verify Session implements Interface at compile time.
var _ Interface = (*Session)(nil)

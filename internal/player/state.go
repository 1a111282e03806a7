package player

// State represents the session state machine.
//
// Valid transitions:
//   - Stopped → Paused  (via Load: the new stream is primed but held)
//   - Paused  → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Playing → Stopped (via Stop, or stream end)
//   - Paused  → Stopped (via Stop)
//
// Invalid transitions are no-ops:
//   - Play when Stopped (nothing loaded)
//   - Pause when not Playing
//   - Stop when already Stopped
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a stream is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

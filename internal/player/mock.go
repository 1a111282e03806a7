package player

import (
	"sync"
	"time"
)

// Mock is a test double for Session. Safe for concurrent use: tests
// mutate it while an engine's tick loop polls it.
type Mock struct {
	mu         sync.Mutex
	state      State
	path       string
	position   time.Duration
	duration   time.Duration
	rate       float64
	loadErr    error
	LoadCalls  []string
	SeekCalls  []time.Duration
	finishedCh chan Finish
}

// NewMock creates a new mock session for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Stopped,
		rate:       1.0,
		finishedCh: make(chan Finish, 1),
	}
}

// SetLoadErr makes subsequent Load calls fail.
func (m *Mock) SetLoadErr(err error) {
	m.mu.Lock()
	m.loadErr = err
	m.mu.Unlock()
}

// SetDuration sets the duration reported after a successful Load.
func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

// SetPosition sets the reported position directly.
func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
}

// SetState forces the session state.
func (m *Mock) SetState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// EmitFinish signals the end of the current stream.
func (m *Mock) EmitFinish(err error) {
	m.mu.Lock()
	m.state = Stopped
	m.mu.Unlock()
	select {
	case m.finishedCh <- Finish{Err: err}:
	default:
	}
}

func (m *Mock) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = append(m.LoadCalls, path)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.path = path
	m.position = 0
	m.state = Paused
	return nil
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	m.path = ""
	m.position = 0
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.path
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopped {
		return 0
	}
	return m.duration
}

func (m *Mock) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopped {
		return
	}
	m.SeekCalls = append(m.SeekCalls, pos)
	if pos < 0 {
		pos = 0
	}
	if pos > m.duration {
		pos = m.duration
	}
	m.position = pos
}

func (m *Mock) SetRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rate > 0 {
		m.rate = rate
	}
}

func (m *Mock) Rate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate
}

func (m *Mock) Finished() <-chan Finish { return m.finishedCh }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

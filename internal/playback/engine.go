// Package playback implements the playback engine: it owns the single
// live player session, exposes the transport operations, publishes
// throttled position updates, and hands natural track ends to an
// advancer for auto-advance.
package playback

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/player"
)

const (
	// Published time moves only when the session clock has drifted this
	// far from the last published value. Bounds update volume, not a
	// precision guarantee.
	driftThreshold = 500 * time.Millisecond

	defaultAdvanceDelay = 200 * time.Millisecond
	defaultSkipInterval = 15 * time.Second
	defaultTickFg       = time.Second
	defaultTickBg       = 5 * time.Second
)

// Advancer resolves what plays after the current item. The engine holds
// it as a non-owning handle; it never manages the advancer's lifecycle.
type Advancer interface {
	// Advance is called after a natural track end. It returns false
	// when the traversal is exhausted; the engine does not retry.
	Advance() bool

	// RememberPosition records the given track and offset as the live
	// container's resume state, if a traversal is active.
	RememberPosition(track Track, offset time.Duration)
}

// OffsetStore persists last-known playback positions onto tracks.
type OffsetStore interface {
	SaveTrackOffset(id int64, offset time.Duration) error
}

// Options configures an Engine. Zero values get defaults.
type Options struct {
	TickForeground time.Duration // position poll interval (default 1s)
	TickBackground time.Duration // poll interval when backgrounded (default 5s)
	SkipInterval   time.Duration // skip forward/backward step (default 15s)
	AdvanceDelay   time.Duration // pause before auto-advance (default 200ms)
	Continuous     bool          // auto-advance on natural end
	Rate           float64       // initial playback rate (default 1.0)
}

// Engine is the playback engine.
type Engine struct {
	mu sync.RWMutex

	session player.Interface
	offsets OffsetStore

	advMu    sync.RWMutex
	advancer Advancer

	current       *Track
	lastPublished time.Duration
	continuous    bool
	backgrounded  bool

	tickFg       time.Duration
	tickBg       time.Duration
	skipInterval time.Duration
	advanceDelay time.Duration

	ticker *time.Ticker

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates an engine over the given session and starts its tick loop.
func New(session player.Interface, offsets OffsetStore, opts Options) *Engine {
	if opts.TickForeground <= 0 {
		opts.TickForeground = defaultTickFg
	}
	if opts.TickBackground <= 0 {
		opts.TickBackground = defaultTickBg
	}
	if opts.SkipInterval <= 0 {
		opts.SkipInterval = defaultSkipInterval
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = defaultAdvanceDelay
	}
	if opts.Rate > 0 {
		session.SetRate(opts.Rate)
	}

	e := &Engine{
		session:      session,
		offsets:      offsets,
		continuous:   opts.Continuous,
		tickFg:       opts.TickForeground,
		tickBg:       opts.TickBackground,
		skipInterval: opts.SkipInterval,
		advanceDelay: opts.AdvanceDelay,
		ticker:       time.NewTicker(opts.TickForeground),
		done:         make(chan struct{}),
	}
	go e.loop()
	return e
}

// SetAdvancer installs the advance handle. Pass nil to detach.
func (e *Engine) SetAdvancer(a Advancer) {
	e.advMu.Lock()
	e.advancer = a
	e.advMu.Unlock()
}

func (e *Engine) advanceHandle() Advancer {
	e.advMu.RLock()
	defer e.advMu.RUnlock()
	return e.advancer
}

// Load resolves and primes a track, seeking to its stored offset. When
// the file is missing the previous session is left intact.
func (e *Engine) Load(t Track) error {
	if _, err := os.Stat(t.Path); err != nil {
		log.Warn().Err(err).Str("path", t.Path).Msg("load: file unavailable, keeping current session")
		e.publishError(ErrorEvent{Operation: "load", Path: t.Path, Err: err})
		return fmt.Errorf("load %s: %w", t.Path, err)
	}

	e.mu.Lock()
	if err := e.session.Load(t.Path); err != nil {
		e.mu.Unlock()
		log.Warn().Err(err).Str("path", t.Path).Msg("load failed")
		e.publishError(ErrorEvent{Operation: "load", Path: t.Path, Err: err})
		return err
	}
	if t.Offset > 0 {
		e.session.SeekTo(t.Offset)
	}
	if d := e.session.Duration(); d > 0 {
		t.Duration = d
	}
	prev := e.current
	cur := t
	e.current = &cur
	pos := e.session.Position()
	e.lastPublished = pos
	e.mu.Unlock()

	e.publishTrack(TrackChange{Previous: prev, Current: &cur})
	e.publishPosition(pos)
	return nil
}

// Play starts or resumes the primed track. Idempotent.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.session.State() != player.Paused {
		e.mu.Unlock()
		return
	}
	e.session.Play()
	e.mu.Unlock()

	e.publishState(StateChange{Playing: true})
}

// Pause holds playback and persists the current offset. Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.session.State() != player.Playing {
		e.mu.Unlock()
		return
	}
	e.session.Pause()
	pos := e.session.Position()
	e.lastPublished = pos
	track := e.currentCopyLocked()
	if e.current != nil {
		e.current.Offset = pos
	}
	e.mu.Unlock()

	e.persistOffset(track, pos)
	e.publishState(StateChange{Playing: false})
}

// Stop tears down the session, persisting the current offset first.
// Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.current == nil && e.session.State() == player.Stopped {
		e.mu.Unlock()
		return
	}
	pos := e.session.Position()
	track := e.currentCopyLocked()
	prev := e.current
	e.session.Stop()
	e.current = nil
	e.lastPublished = 0
	e.mu.Unlock()

	e.persistOffset(track, pos)
	e.publishState(StateChange{Playing: false})
	e.publishTrack(TrackChange{Previous: prev, Current: nil})
}

// Toggle flips between playing and paused.
func (e *Engine) Toggle() {
	e.mu.RLock()
	state := e.session.State()
	e.mu.RUnlock()

	switch state {
	case player.Playing:
		e.Pause()
	case player.Paused:
		e.Play()
	case player.Stopped:
		// Nothing to toggle
	}
}

// Seek moves playback to the given position, clamped to [0, duration].
func (e *Engine) Seek(to time.Duration) {
	e.mu.Lock()
	if !e.session.State().IsActive() {
		e.mu.Unlock()
		return
	}
	dur := e.session.Duration()
	if to < 0 {
		to = 0
	}
	if to > dur {
		to = dur
	}
	e.session.SeekTo(to)
	pos := e.session.Position()
	e.lastPublished = pos
	e.mu.Unlock()

	e.publishPosition(pos)
}

// SkipForward seeks ahead by the configured skip interval.
func (e *Engine) SkipForward() {
	e.Seek(e.Position() + e.skipInterval)
}

// SkipBackward seeks back by the configured skip interval.
func (e *Engine) SkipBackward() {
	e.Seek(e.Position() - e.skipInterval)
}

// SetRate applies a playback rate to the live session only.
func (e *Engine) SetRate(rate float64) {
	e.mu.Lock()
	e.session.SetRate(rate)
	e.mu.Unlock()
}

// Rate returns the current playback rate.
func (e *Engine) Rate() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Rate()
}

// SetContinuous toggles auto-advance on natural track end.
func (e *Engine) SetContinuous(on bool) {
	e.mu.Lock()
	e.continuous = on
	e.mu.Unlock()
}

// Continuous reports whether auto-advance is enabled.
func (e *Engine) Continuous() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.continuous
}

// SetBackgrounded switches the position ticker between the foreground
// and background intervals.
func (e *Engine) SetBackgrounded(bg bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backgrounded == bg {
		return
	}
	e.backgrounded = bg
	if bg {
		e.ticker.Reset(e.tickBg)
	} else {
		e.ticker.Reset(e.tickFg)
	}
}

// IsPlaying reports whether the session is playing.
func (e *Engine) IsPlaying() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.State() == player.Playing
}

// Position returns the session clock.
func (e *Engine) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Position()
}

// Duration returns the loaded track's duration.
func (e *Engine) Duration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Duration()
}

// CurrentTrack returns a copy of the loaded track, or nil.
func (e *Engine) CurrentTrack() *Track {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentCopyLocked()
}

// Status returns a snapshot of the published observable state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Playing:  e.session.State() == player.Playing,
		Track:    e.currentCopyLocked(),
		Position: e.session.Position(),
		Duration: e.session.Duration(),
		Rate:     e.session.Rate(),
	}
}

func (e *Engine) currentCopyLocked() *Track {
	if e.current == nil {
		return nil
	}
	cur := *e.current
	return &cur
}

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close shuts down the engine, its ticker, and all subscriptions.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.ticker.Stop()
	close(e.done)
	e.session.Stop()
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()

	return nil
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.done:
			return
		case fin := <-e.session.Finished():
			e.handleFinish(fin)
		case <-e.ticker.C:
			e.tick()
		}
	}
}

// tick reads the session clock, republishing only when it has drifted
// past the threshold since the last published value.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.session.State() != player.Playing {
		e.mu.Unlock()
		return
	}
	pos := e.session.Position()
	drift := pos - e.lastPublished
	if drift < 0 {
		drift = -drift
	}
	if drift <= driftThreshold {
		e.mu.Unlock()
		return
	}
	e.lastPublished = pos
	e.mu.Unlock()

	e.publishPosition(pos)
}

// handleFinish processes the end of a stream. A decode failure halts
// playback with no auto-advance; a natural end rewinds the track's
// stored offset and hands off to the advancer after a short delay.
func (e *Engine) handleFinish(fin player.Finish) {
	e.mu.Lock()
	track := e.currentCopyLocked()
	prev := e.current
	e.session.Stop()
	e.current = nil
	e.lastPublished = 0
	cont := e.continuous
	e.mu.Unlock()

	if fin.Err != nil {
		path := ""
		if track != nil {
			path = track.Path
		}
		log.Error().Err(fin.Err).Str("path", path).Msg("decode failure, halting playback")
		e.publishState(StateChange{Playing: false})
		e.publishError(ErrorEvent{Operation: "decode", Path: path, Err: fin.Err})
		return
	}

	if track != nil && e.offsets != nil {
		if err := e.offsets.SaveTrackOffset(track.ID, 0); err != nil {
			log.Debug().Err(err).Int64("track", track.ID).Msg("offset reset failed")
		}
	}
	e.publishPosition(0)
	e.publishState(StateChange{Playing: false})
	e.publishTrack(TrackChange{Previous: prev, Current: nil})

	if adv := e.advanceHandle(); adv != nil && cont {
		time.AfterFunc(e.advanceDelay, func() { adv.Advance() })
	}
}

// persistOffset writes the position onto the track and the active
// container's resume state. Best-effort: failures are logged, never
// surfaced.
func (e *Engine) persistOffset(track *Track, pos time.Duration) {
	if track == nil {
		return
	}
	if e.offsets != nil {
		if err := e.offsets.SaveTrackOffset(track.ID, pos); err != nil {
			log.Warn().Err(err).Int64("track", track.ID).Msg("offset save failed")
		}
	}
	if adv := e.advanceHandle(); adv != nil {
		adv.RememberPosition(*track, pos)
	}
}

func (e *Engine) publishState(ev StateChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendState(ev)
	}
}

func (e *Engine) publishTrack(ev TrackChange) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendTrack(ev)
	}
}

func (e *Engine) publishPosition(pos time.Duration) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendPosition(pos)
	}
}

func (e *Engine) publishError(ev ErrorEvent) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.sendError(ev)
	}
}

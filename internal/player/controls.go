package player

import (
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// Play starts or resumes the primed stream.
func (s *Session) Play() {
	if s.state != Paused || s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	s.state = Playing
}

// Pause holds the stream at its current position.
func (s *Session) Pause() {
	if s.state != Playing || s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.state = Paused
}

// Stop tears down the stream and releases its resources.
func (s *Session) Stop() {
	if s.state == Stopped {
		return
	}

	speaker.Clear()

	if s.streamer != nil {
		s.streamer.Close()
		s.streamer = nil
	}
	if s.file != nil {
		s.file.Close()
		s.file = nil
	}

	s.ctrl = nil
	s.resampler = nil
	s.volume = nil
	s.path = ""
	s.state = Stopped
}

// SeekTo moves the stream to pos, clamped to [0, duration]. Seeking to
// or past the end signals finish instead.
func (s *Session) SeekTo(pos time.Duration) {
	if s.streamer == nil || s.state == Stopped {
		return
	}

	n := s.format.SampleRate.N(pos)
	n = max(n, 0)

	// Length read and seek both race the speaker goroutine otherwise
	speaker.Lock()
	if n >= s.streamer.Len() {
		speaker.Unlock()
		select {
		case s.finishedCh <- Finish{}:
		default:
		}
		return
	}
	// Mute across the seek to avoid audible artifacts from stale buffers
	s.volume.Silent = true
	_ = s.streamer.Seek(n)
	s.volume.Silent = false
	speaker.Unlock()
}

// SetRate sets the playback rate. Applies to the live stream only and
// carries over to the next Load; never persisted anywhere.
func (s *Session) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.rate = rate
	if s.resampler == nil {
		return
	}
	speaker.Lock()
	s.resampler.SetRatio(rate)
	speaker.Unlock()
}

// Rate returns the current playback rate.
func (s *Session) Rate() float64 {
	return s.rate
}

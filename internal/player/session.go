// Package player wraps beep decoding and output behind a single-session
// contract: at most one decoder is live, and loading a new file always
// tears the previous one down first.
package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extWAV  = ".wav"

	resampleQuality = 4
)

var (
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// Session owns the single live decoder and output stream.
type Session struct {
	state      State
	streamer   beep.StreamSeekCloser
	format     beep.Format
	resampler  *beep.Resampler
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	file       *os.File
	path       string
	rate       float64
	finishedCh chan Finish
}

// New creates an empty session.
func New() *Session {
	return &Session{
		state:      Stopped,
		rate:       1.0,
		finishedCh: make(chan Finish, 1),
	}
}

// Load tears down any live stream, decodes the file at path, and primes
// it paused at position zero. The caller decides when to Play.
func (s *Session) Load(path string) error {
	s.Stop()

	// Drain any stale finish signal from the previous stream
	select {
	case <-s.finishedCh:
	default:
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != extMP3 && ext != extFLAC && ext != extOGG && ext != extWAV {
		return fmt.Errorf("unsupported format: %s", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	case extOGG:
		streamer, format, err = vorbis.Decode(f)
	case extWAV:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		return err
	}

	// Re-arm the output device. Init is idempotent after the first call;
	// later tracks are resampled to the device rate.
	if err := ensureSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		f.Close()
		return err
	}

	var base beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		base = beep.Resample(resampleQuality, format.SampleRate, speakerSampleRate, streamer)
	}

	s.file = f
	s.path = path
	s.streamer = streamer
	s.format = format
	s.resampler = beep.ResampleRatio(resampleQuality, s.rate, base)
	s.ctrl = &beep.Ctrl{Streamer: s.resampler, Paused: true}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2, Volume: 0, Silent: false}
	s.state = Paused

	finished := s.finishedCh
	speaker.Play(beep.Seq(s.volume, beep.Callback(func() {
		fin := Finish{Err: streamer.Err()}
		select {
		case finished <- fin:
		default:
		}
	})))

	return nil
}

func ensureSpeaker(rate beep.SampleRate) error {
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerSampleRate = rate
	speakerInitialized = true
	return nil
}

// Path returns the path of the loaded file, or "" when stopped.
func (s *Session) Path() string {
	return s.path
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// Duration returns the loaded stream's total duration.
func (s *Session) Duration() time.Duration {
	if s.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := s.streamer.Len()
	speaker.Unlock()
	return s.format.SampleRate.D(n)
}

// Position returns the current stream position. The speaker goroutine
// advances the streamer concurrently, so the read is taken under its
// lock.
func (s *Session) Position() time.Duration {
	if s.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := s.streamer.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(n)
}

// Finished delivers one signal per stream end (natural or failed).
func (s *Session) Finished() <-chan Finish {
	return s.finishedCh
}

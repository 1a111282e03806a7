//go:build linux

// Package remote exposes the playback engine and queue controller over
// MPRIS so desktop media keys and applets can drive playback.
package remote

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/library"
	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/queue"
)

const (
	minRate = 0.5
	maxRate = 2.0
)

// Adapter connects the engine and controller to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	done   chan struct{}
}

// New creates and starts a new MPRIS adapter.
func New(engine *playback.Engine, controller *queue.Controller) (*Adapter, error) {
	a := &Adapter{done: make(chan struct{})}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{engine: engine, controller: controller}

	a.server = server.NewServer("cadence", rootAdapter, playerAdapter)

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn().Err(err).Msg("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Cadence", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	engine     *playback.Engine
	controller *queue.Controller
}

func (p *playerAdapter) Next() error {
	p.controller.Advance()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.controller.Retreat()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.engine.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.engine.Toggle()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.controller.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.engine.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.engine.Seek(p.engine.Position() + time.Duration(offset)*time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.engine.Seek(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	status := p.engine.Status()
	switch {
	case status.Playing:
		return types.PlaybackStatusPlaying, nil
	case status.Track != nil:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.engine.Rate(), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	if rate < minRate || rate > maxRate {
		return nil
	}
	p.engine.SetRate(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.engine.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(track.Path)),
		Length:      types.Microseconds(track.Duration.Microseconds()),
		Title:       track.Title,
		Artist:      []string{track.Artist},
		Album:       track.Album,
		TrackNumber: track.TrackNumber,
	}

	if artPath := library.FindAlbumArt(track.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.engine.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return minRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return maxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.controller.HasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.controller.HasPrevious(), nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.engine.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

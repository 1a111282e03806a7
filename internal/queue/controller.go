// Package queue implements the traversal controller: it tracks which
// container (playlist or folder) is driving sequential playback and
// resolves what comes after the current item on natural track end.
package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/store"
)

// Kind names the active traversal variant. At most one is active.
type Kind int

const (
	KindNone Kind = iota
	KindPlaylist
	KindFolder
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPlaylist:
		return "playlist"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// Engine is the transport surface the controller drives.
type Engine interface {
	Load(t playback.Track) error
	Play()
	Stop()
}

// Library supplies container snapshots and resume state.
type Library interface {
	PlaylistTracks(playlistID int64) ([]store.Track, error)
	TouchPlaylist(id int64) error
	FolderTracks(folderID int64) ([]store.Track, error)
	Resume(kind store.ContainerKind, containerID int64) (*store.ResumePoint, error)
	SaveResume(kind store.ContainerKind, containerID, trackID int64, offset time.Duration) error
}

// Controller owns the single live traversal context.
type Controller struct {
	mu sync.Mutex

	engine  Engine
	library Library

	kind        Kind
	containerID int64
	tracks      []playback.Track // snapshot taken at start
	index       int
}

// New creates a controller over the given engine and library.
func New(engine Engine, library Library) *Controller {
	return &Controller{
		engine:  engine,
		library: library,
		kind:    KindNone,
		index:   -1,
	}
}

// StartPlaylist begins a playlist traversal at startTrackID, discarding
// any live traversal. A startTrackID not present in the playlist (or
// zero) falls back to the first item.
func (c *Controller) StartPlaylist(playlistID, startTrackID int64) error {
	rows, err := c.library.PlaylistTracks(playlistID)
	if err != nil {
		return fmt.Errorf("start playlist %d: %w", playlistID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("start playlist %d: playlist is empty", playlistID)
	}

	tracks := toPlaybackTracks(rows)
	index := 0
	if startTrackID != 0 {
		if i := indexOfTrack(tracks, startTrackID); i >= 0 {
			index = i
		} else {
			log.Warn().Int64("playlist", playlistID).Int64("track", startTrackID).
				Msg("start track not in playlist, falling back to first item")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.playLocked(tracks[index]); err != nil {
		return err
	}
	c.kind = KindPlaylist
	c.containerID = playlistID
	c.tracks = tracks
	c.index = index

	if err := c.library.TouchPlaylist(playlistID); err != nil {
		log.Debug().Err(err).Int64("playlist", playlistID).Msg("touch failed")
	}
	return nil
}

// StartFolder begins a folder traversal, discarding any live traversal.
// With resume set and a saved resume point, playback picks up at the
// remembered track and offset; otherwise it starts at the first item
// from position zero.
func (c *Controller) StartFolder(folderID int64, resume bool) error {
	rows, err := c.library.FolderTracks(folderID)
	if err != nil {
		return fmt.Errorf("start folder %d: %w", folderID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("start folder %d: folder has no tracks", folderID)
	}

	tracks := toPlaybackTracks(rows)
	index := 0
	resumed := false
	if resume {
		if rp, err := c.library.Resume(store.KindFolder, folderID); err != nil {
			log.Warn().Err(err).Int64("folder", folderID).Msg("resume lookup failed")
		} else if rp != nil {
			if i := indexOfTrack(tracks, rp.TrackID); i >= 0 {
				index = i
				tracks[index].Offset = rp.Offset
				resumed = true
			}
		}
	}
	if !resumed {
		// No saved state applied: the first item starts from the top,
		// whatever offset the track row carries.
		tracks[index].Offset = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.playLocked(tracks[index]); err != nil {
		return err
	}
	c.kind = KindFolder
	c.containerID = folderID
	c.tracks = tracks
	c.index = index
	return nil
}

// Advance moves to the next item in the snapshot. Called from the
// engine's natural-end hook. Returns false when the traversal is
// exhausted, clearing the context; the caller does not retry.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kind == KindNone {
		return false
	}

	next := c.index + 1
	if next >= len(c.tracks) {
		log.Info().Stringer("kind", c.kind).Int64("container", c.containerID).
			Msg("traversal exhausted")
		c.clearLocked()
		return false
	}

	if err := c.playLocked(c.tracks[next]); err != nil {
		return false
	}
	c.index = next
	return true
}

// Retreat moves to the previous item. Used for explicit "previous"
// commands only, never auto-triggered. At the first item it returns
// false and keeps the traversal live.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kind == KindNone || c.index <= 0 {
		return false
	}

	prev := c.index - 1
	if err := c.playLocked(c.tracks[prev]); err != nil {
		return false
	}
	c.index = prev
	return true
}

// Stop halts the engine and clears the traversal context.
func (c *Controller) Stop() {
	// Engine.Stop persists the offset, which calls back into
	// RememberPosition; run it before taking the controller lock so the
	// resume state still sees the live traversal.
	c.engine.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// RememberPosition records the track and offset as the active
// container's resume state. Best-effort: failures are logged and
// swallowed.
func (c *Controller) RememberPosition(track playback.Track, offset time.Duration) {
	c.mu.Lock()
	kind := c.kind
	containerID := c.containerID
	c.mu.Unlock()

	var storeKind store.ContainerKind
	switch kind {
	case KindPlaylist:
		storeKind = store.KindPlaylist
	case KindFolder:
		storeKind = store.KindFolder
	default:
		return
	}

	if err := c.library.SaveResume(storeKind, containerID, track.ID, offset); err != nil {
		log.Warn().Err(err).Stringer("kind", kind).Int64("container", containerID).
			Msg("resume save failed")
	}
}

// Active returns the live traversal's kind and container ID.
func (c *Controller) Active() (Kind, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind, c.containerID
}

// Index returns the current position within the snapshot (-1 if none).
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind == KindNone {
		return -1
	}
	return c.index
}

// Snapshot returns a copy of the traversal's track sequence.
func (c *Controller) Snapshot() []playback.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]playback.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// HasNext reports whether an item follows the current one.
func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind != KindNone && c.index < len(c.tracks)-1
}

// HasPrevious reports whether an item precedes the current one.
func (c *Controller) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind != KindNone && c.index > 0
}

func (c *Controller) playLocked(t playback.Track) error {
	if err := c.engine.Load(t); err != nil {
		return err
	}
	c.engine.Play()
	return nil
}

func (c *Controller) clearLocked() {
	c.kind = KindNone
	c.containerID = 0
	c.tracks = nil
	c.index = -1
}

func toPlaybackTracks(rows []store.Track) []playback.Track {
	out := make([]playback.Track, len(rows))
	for i, r := range rows {
		out[i] = playback.Track{
			ID:          r.ID,
			Path:        r.Path,
			Title:       r.Title,
			Artist:      r.Artist,
			Album:       r.Album,
			TrackNumber: r.TrackNumber,
			Duration:    r.Duration,
			Offset:      r.Offset,
		}
	}
	return out
}

func indexOfTrack(tracks []playback.Track, id int64) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

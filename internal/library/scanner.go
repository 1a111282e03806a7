// Package library registers playable files and their directories with
// the store. The scan is incremental: unchanged files (same mtime) are
// skipped, vanished files are pruned.
package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/store"
)

var playableExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// IsPlayable reports whether the path has a supported audio extension.
func IsPlayable(path string) bool {
	return playableExts[strings.ToLower(filepath.Ext(path))]
}

// Stats holds the result of a completed scan.
type Stats struct {
	Added   int
	Updated int
	Removed int
}

// Scanner performs library scans against a store.
type Scanner struct {
	store *store.Store
}

// NewScanner creates a scanner over the given store.
func NewScanner(s *store.Store) *Scanner {
	return &Scanner{store: s}
}

// Scan walks the given roots, registering or refreshing playable files
// and the directories that hold them, then prunes tracks under those
// roots whose files no longer exist.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Stats, error) {
	stats := &Stats{}
	seen := make(map[string]bool)

	for _, root := range roots {
		root = filepath.Clean(root)
		if err := s.scanRoot(ctx, root, seen, stats); err != nil {
			return stats, err
		}
		if err := s.pruneRoot(root, seen, stats); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string, seen map[string]bool, stats *Stats) error {
	dirsWithTracks := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scan: skipping unreadable entry")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsPlayable(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scan: stat failed")
			return nil
		}

		seen[path] = true
		dirsWithTracks[filepath.Dir(path)] = true

		existing, err := s.store.TrackByPath(path)
		if err != nil {
			return err
		}
		if existing != nil && existing.Mtime == info.ModTime().Unix() {
			return nil // unchanged
		}

		t := readTrack(path, info.ModTime())
		if err := s.store.UpsertTrack(t); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scan: register failed")
			return nil
		}
		if existing == nil {
			stats.Added++
		} else {
			stats.Updated++
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Register each directory holding tracks as a folder container.
	// Parents first so the child rows pick up their parent link.
	for _, dir := range sortedDirs(dirsWithTracks) {
		if _, err := s.store.UpsertFolder(dir); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("scan: folder registration failed")
		}
	}
	return nil
}

func (s *Scanner) pruneRoot(root string, seen map[string]bool, stats *Stats) error {
	known, err := s.store.TracksUnder(root)
	if err != nil {
		return err
	}
	for _, t := range known {
		if seen[t.Path] {
			continue
		}
		if err := s.store.DeleteTrack(t.ID); err != nil {
			log.Warn().Err(err).Str("path", t.Path).Msg("scan: prune failed")
			continue
		}
		stats.Removed++
	}
	return nil
}

// readTrack builds a track row from file tags, falling back to the
// filename when the tags are unreadable.
func readTrack(path string, mtime time.Time) *store.Track {
	t := &store.Track{
		Path:  path,
		Mtime: mtime.Unix(),
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}

	if title := meta.Title(); title != "" {
		t.Title = title
	}
	t.Artist = meta.Artist()
	t.Album = meta.Album()
	t.TrackNumber, _ = meta.Track()
	return t
}

// sortedDirs returns the keys ordered shortest-path first so parents
// are registered before children.
func sortedDirs(dirs map[string]bool) []string {
	out := make([]string, 0, len(dirs))
	for d := range dirs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}

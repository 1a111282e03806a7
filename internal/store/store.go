// Package store provides sqlite persistence for tracks, containers
// (playlists and folders), per-track playback offsets, and per-container
// resume points.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "cadence"
	dbFileName = "cadence.db"
)

// Track identifies one playable file.
type Track struct {
	ID          int64
	Path        string
	Mtime       int64
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Duration    time.Duration
	Offset      time.Duration // last-known playback position
	AddedAt     int64
}

// Playlist is an ordered, user-curated container of tracks.
type Playlist struct {
	ID         int64
	Name       string
	CreatedAt  int64
	LastUsedAt int64
}

// Folder is a directory-backed container: its tracks are the library
// tracks whose path lives under the folder path, ordered by path.
type Folder struct {
	ID        int64
	ParentID  *int64
	Name      string
	Path      string
	CreatedAt int64
}

// ContainerKind distinguishes the two container variants.
type ContainerKind int

const (
	KindPlaylist ContainerKind = iota + 1
	KindFolder
)

// String returns the kind name.
func (k ContainerKind) String() string {
	switch k {
	case KindPlaylist:
		return "playlist"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ResumePoint is a container's remembered "last played track + offset".
type ResumePoint struct {
	TrackID   int64
	Offset    time.Duration
	UpdatedAt int64
}

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenDefault opens the database in the XDG data directory.
func OpenDefault() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return Open(dbPath)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for collaborators that run their own queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

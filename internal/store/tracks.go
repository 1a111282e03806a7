package store

import (
	"database/sql"
	"time"

	dbutil "github.com/cadence-audio/cadence/internal/db"
)

const trackColumns = `id, path, mtime, title, artist, album, track_number, duration_ms, offset_ms, added_at`

// UpsertTrack inserts or refreshes a track row keyed by path.
// A refresh keeps the existing playback offset. The track's ID is set
// on return.
func (s *Store) UpsertTrack(t *Track) error {
	now := time.Now().Unix()
	err := s.db.QueryRow(`
		INSERT INTO tracks (path, mtime, title, artist, album, track_number, duration_ms, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			track_number = excluded.track_number,
			duration_ms = excluded.duration_ms
		RETURNING id, offset_ms
	`, t.Path, t.Mtime, t.Title, t.Artist, t.Album, t.TrackNumber, t.Duration.Milliseconds(), now).
		Scan(&t.ID, &msScanner{&t.Offset})
	if err != nil {
		return err
	}
	if t.AddedAt == 0 {
		t.AddedAt = now
	}
	return nil
}

// TrackByID returns the track with the given ID, or nil if absent.
func (s *Store) TrackByID(id int64) (*Track, error) {
	row := s.db.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	return scanTrack(row)
}

// TrackByPath returns the track with the given path, or nil if absent.
func (s *Store) TrackByPath(path string) (*Track, error) {
	row := s.db.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE path = ?`, path)
	return scanTrack(row)
}

// Tracks returns all tracks ordered by path.
func (s *Store) Tracks() ([]Track, error) {
	rows, err := s.db.Query(`SELECT ` + trackColumns + ` FROM tracks ORDER BY path`)
	if err != nil {
		return nil, err
	}
	return collectTracks(rows)
}

// SaveTrackOffset persists the last-known playback position for a track.
func (s *Store) SaveTrackOffset(id int64, offset time.Duration) error {
	_, err := s.db.Exec(`UPDATE tracks SET offset_ms = ? WHERE id = ?`, offset.Milliseconds(), id)
	return err
}

// DeleteTrack removes a track row. Membership rows and resume points
// referencing it cascade.
func (s *Store) DeleteTrack(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	return err
}

// TracksUnder returns the tracks whose path lives under root, ordered
// by path. This is the ordered sequence of a folder container.
func (s *Store) TracksUnder(root string) ([]Track, error) {
	rows, err := s.db.Query(`
		SELECT `+trackColumns+`
		FROM tracks
		WHERE path LIKE ? ESCAPE '\'
		ORDER BY path
	`, escapeLike(root)+"/%")
	if err != nil {
		return nil, err
	}
	return collectTracks(rows)
}

// escapeLike escapes LIKE metacharacters in a literal path prefix.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*Track, error) {
	var t Track
	var artist, album sql.NullString
	var trackNumber, durationMS, offsetMS sql.NullInt64

	err := row.Scan(&t.ID, &t.Path, &t.Mtime, &t.Title, &artist, &album,
		&trackNumber, &durationMS, &offsetMS, &t.AddedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t.Artist = dbutil.NullStringValue(artist)
	t.Album = dbutil.NullStringValue(album)
	t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
	t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
	t.Offset = time.Duration(dbutil.NullInt64Value(offsetMS)) * time.Millisecond
	return &t, nil
}

func collectTracks(rows *sql.Rows) ([]Track, error) {
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// msScanner scans an integer millisecond column into a time.Duration.
type msScanner struct {
	d *time.Duration
}

func (m *msScanner) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*m.d = time.Duration(v) * time.Millisecond
	case nil:
		*m.d = 0
	}
	return nil
}

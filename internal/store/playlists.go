package store

import (
	"database/sql"
	"time"

	dbutil "github.com/cadence-audio/cadence/internal/db"
)

// CreatePlaylist creates a new playlist.
func (s *Store) CreatePlaylist(name string) (int64, error) {
	now := time.Now().Unix()
	result, err := s.db.Exec(`
		INSERT INTO playlists (name, created_at, last_used_at)
		VALUES (?, ?, ?)
	`, name, now, now)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RenamePlaylist renames a playlist.
func (s *Store) RenamePlaylist(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?`, name, id)
	return err
}

// DeletePlaylist deletes a playlist and its membership rows.
func (s *Store) DeletePlaylist(id int64) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM resume_points WHERE container_kind = ? AND container_id = ?`,
			KindPlaylist, id)
		return err
	})
}

// TouchPlaylist bumps a playlist's last-used timestamp.
func (s *Store) TouchPlaylist(id int64) error {
	_, err := s.db.Exec(`UPDATE playlists SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

// Playlists returns all playlists ordered by name.
func (s *Store) Playlists() ([]Playlist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, last_used_at
		FROM playlists
		ORDER BY name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.LastUsedAt); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// PlaylistByID returns the playlist with the given ID, or nil if absent.
func (s *Store) PlaylistByID(id int64) (*Playlist, error) {
	var p Playlist
	err := s.db.QueryRow(`
		SELECT id, name, created_at, last_used_at FROM playlists WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PlaylistTracks returns a playlist's tracks in playlist order.
func (s *Store) PlaylistTracks(playlistID int64) ([]Track, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.path, t.mtime, t.title, t.artist, t.album,
		       t.track_number, t.duration_ms, t.offset_ms, t.added_at
		FROM playlist_tracks pt
		JOIN tracks t ON pt.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	return collectTracks(rows)
}

// AddPlaylistTracks appends tracks to the end of a playlist.
func (s *Store) AddPlaylistTracks(playlistID int64, trackIDs []int64) error {
	if len(trackIDs) == 0 {
		return nil
	}

	var maxPos sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(position) FROM playlist_tracks WHERE playlist_id = ?
	`, playlistID).Scan(&maxPos)
	if err != nil {
		return err
	}

	nextPos := int(dbutil.NullInt64Value(maxPos))
	if maxPos.Valid {
		nextPos++
	}

	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO playlist_tracks (playlist_id, position, track_id)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, trackID := range trackIDs {
			if _, err := stmt.Exec(playlistID, nextPos+i, trackID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemovePlaylistTrack removes the entry at the given position and
// compacts the positions that follow.
func (s *Store) RemovePlaylistTrack(playlistID int64, position int) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			DELETE FROM playlist_tracks WHERE playlist_id = ? AND position = ?
		`, playlistID, position)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		_, err = tx.Exec(`
			UPDATE playlist_tracks SET position = position - 1
			WHERE playlist_id = ? AND position > ?
		`, playlistID, position)
		return err
	})
}

package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			track_number INTEGER,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			offset_ms INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_path ON tracks(path);

		CREATE TABLE IF NOT EXISTS folders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id INTEGER REFERENCES folders(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL,
			last_used_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id INTEGER NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
			UNIQUE(playlist_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position);

		CREATE TABLE IF NOT EXISTS resume_points (
			container_kind INTEGER NOT NULL,
			container_id INTEGER NOT NULL,
			track_id INTEGER NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
			offset_ms INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (container_kind, container_id)
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add offset_ms column if missing (pre-v2 databases)
	_, _ = db.Exec(`ALTER TABLE tracks ADD COLUMN offset_ms INTEGER NOT NULL DEFAULT 0`)

	return nil
}

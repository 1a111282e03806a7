package store

import (
	"database/sql"
	"path/filepath"
	"time"

	dbutil "github.com/cadence-audio/cadence/internal/db"
)

// UpsertFolder registers a directory as a folder container. The parent
// link is resolved against an already-registered parent directory, if
// any.
func (s *Store) UpsertFolder(path string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM folders WHERE path = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	var parentID any
	var pid int64
	err = s.db.QueryRow(`SELECT id FROM folders WHERE path = ?`, filepath.Dir(path)).Scan(&pid)
	if err == nil {
		parentID = pid
	} else if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := s.db.Exec(`
		INSERT INTO folders (parent_id, name, path, created_at)
		VALUES (?, ?, ?, ?)
	`, parentID, filepath.Base(path), path, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Folders returns all folders ordered by path.
func (s *Store) Folders() ([]Folder, error) {
	rows, err := s.db.Query(`
		SELECT id, parent_id, name, path, created_at
		FROM folders
		ORDER BY path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		var parentID sql.NullInt64
		if err := rows.Scan(&f.ID, &parentID, &f.Name, &f.Path, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.ParentID = dbutil.NullInt64ToPtr(parentID)
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// FolderByID returns the folder with the given ID, or nil if absent.
func (s *Store) FolderByID(id int64) (*Folder, error) {
	var f Folder
	var parentID sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, parent_id, name, path, created_at FROM folders WHERE id = ?
	`, id).Scan(&f.ID, &parentID, &f.Name, &f.Path, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.ParentID = dbutil.NullInt64ToPtr(parentID)
	return &f, nil
}

// DeleteFolder removes a folder registration. Tracks are untouched;
// only the container and its resume point go away.
func (s *Store) DeleteFolder(id int64) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM folders WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM resume_points WHERE container_kind = ? AND container_id = ?`,
			KindFolder, id)
		return err
	})
}

// FolderTracks returns a folder's ordered track sequence.
func (s *Store) FolderTracks(folderID int64) ([]Track, error) {
	f, err := s.FolderByID(folderID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return s.TracksUnder(f.Path)
}

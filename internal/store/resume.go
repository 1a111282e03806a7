package store

import (
	"database/sql"
	"time"
)

// SaveResume remembers the last played track and offset for a container.
func (s *Store) SaveResume(kind ContainerKind, containerID, trackID int64, offset time.Duration) error {
	_, err := s.db.Exec(`
		INSERT INTO resume_points (container_kind, container_id, track_id, offset_ms, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(container_kind, container_id) DO UPDATE SET
			track_id = excluded.track_id,
			offset_ms = excluded.offset_ms,
			updated_at = excluded.updated_at
	`, kind, containerID, trackID, offset.Milliseconds(), time.Now().Unix())
	return err
}

// Resume returns a container's resume point, or nil when none is saved.
func (s *Store) Resume(kind ContainerKind, containerID int64) (*ResumePoint, error) {
	var rp ResumePoint
	var offsetMS int64
	err := s.db.QueryRow(`
		SELECT track_id, offset_ms, updated_at
		FROM resume_points
		WHERE container_kind = ? AND container_id = ?
	`, kind, containerID).Scan(&rp.TrackID, &offsetMS, &rp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rp.Offset = time.Duration(offsetMS) * time.Millisecond
	return &rp, nil
}

// ClearResume drops a container's resume point.
func (s *Store) ClearResume(kind ContainerKind, containerID int64) error {
	_, err := s.db.Exec(`
		DELETE FROM resume_points WHERE container_kind = ? AND container_id = ?
	`, kind, containerID)
	return err
}

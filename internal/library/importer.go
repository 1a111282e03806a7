package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/rs/zerolog/log"
)

// Retry configuration
const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// ImportResult describes where an imported file landed.
type ImportResult struct {
	DestPath string
	Moved    bool
}

// Import brings an audio file into the library root, organized by its
// artist and album tags, then registers it in the store. With move set
// the source file is removed after the copy.
func (s *Scanner) Import(ctx context.Context, sourcePath, destRoot string, move bool) (*ImportResult, error) {
	if !IsPlayable(sourcePath) {
		return nil, fmt.Errorf("import %s: unsupported file format", sourcePath)
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("import: source file: %w", err)
	}
	if _, err := os.Stat(destRoot); err != nil {
		return nil, fmt.Errorf("import: library root: %w", err)
	}

	destPath := filepath.Join(destRoot, importRelPath(sourcePath))
	if samePath(sourcePath, destPath) {
		return nil, fmt.Errorf("import %s: already in the library", sourcePath)
	}

	destDir := filepath.Dir(destPath)
	if err := retryWithBackoff(ctx, "create directory", func() error {
		return os.MkdirAll(destDir, 0o755)
	}); err != nil {
		return nil, err
	}

	op, fn := "copy file", func() error { return copyFile(sourcePath, destPath) }
	if move {
		op, fn = "move file", func() error { return moveFile(sourcePath, destPath) }
	}
	if err := retryWithBackoff(ctx, op, fn); err != nil {
		return nil, err
	}

	track := readTrack(destPath, info.ModTime())
	if err := s.store.UpsertTrack(track); err != nil {
		return nil, fmt.Errorf("import: register track: %w", err)
	}
	if _, err := s.store.UpsertFolder(destDir); err != nil {
		log.Warn().Err(err).Str("dir", destDir).Msg("import: folder registration failed")
	}

	log.Info().Str("source", sourcePath).Str("dest", destPath).Bool("moved", move).
		Msg("file imported")
	return &ImportResult{DestPath: destPath, Moved: move}, nil
}

// importRelPath builds "Artist/Album/filename" from the file's tags,
// degrading to just the filename when untagged or unreadable.
func importRelPath(sourcePath string) string {
	name := filepath.Base(sourcePath)

	f, err := os.Open(sourcePath)
	if err != nil {
		return name
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return name
	}

	artist := sanitizePathComponent(meta.AlbumArtist())
	if artist == "" {
		artist = sanitizePathComponent(meta.Artist())
	}
	album := sanitizePathComponent(meta.Album())
	switch {
	case artist != "" && album != "":
		return filepath.Join(artist, album, name)
	case artist != "":
		return filepath.Join(artist, name)
	default:
		return name
	}
}

// sanitizePathComponent strips characters that are unsafe in a single
// path element.
func sanitizePathComponent(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	s = replacer.Replace(s)
	return strings.Trim(s, ". ")
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	return dstFile.Close()
}

// moveFile moves a file from src to dst.
// Uses os.Rename if possible, otherwise copies and deletes.
func moveFile(src, dst string) error {
	// Try rename first (works if same filesystem)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// retryWithBackoff executes an operation with exponential backoff retry.
// Returns the last error if all retries fail.
func retryWithBackoff(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: cancelled after %d attempts: %w", operation, attempt, lastErr)
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return fmt.Errorf("%s: %w", operation, err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", operation, maxRetries+1, lastErr)
}

// isRetryableError checks if an error is likely temporary and worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// File lock indicators
	if strings.Contains(errStr, "locked") ||
		strings.Contains(errStr, "in use") ||
		strings.Contains(errStr, "busy") {
		return true
	}

	// Network/IO indicators
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "i/o") ||
		strings.Contains(errStr, "temporary") {
		return true
	}

	return errors.Is(err, os.ErrDeadlineExceeded)
}

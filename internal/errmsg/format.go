// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan Op = "scan library"
	OpLibraryList Op = "list library tracks"

	// Playlist operations
	OpPlaylistCreate Op = "create playlist"
	OpPlaylistRename Op = "rename playlist"
	OpPlaylistDelete Op = "delete playlist"
	OpPlaylistList   Op = "list playlists"
	OpPlaylistStart  Op = "start playlist"

	// Folder operations
	OpFolderList  Op = "list folders"
	OpFolderStart Op = "start folder"

	// Playback operations
	OpPlaybackSeek Op = "seek"
	OpPlaybackRate Op = "set playback rate"

	// Import operations
	OpImportFile Op = "import file"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

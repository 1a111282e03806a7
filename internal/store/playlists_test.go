package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlaylist_DuplicateName(t *testing.T) {
	s := openTestStore(t)

	_, err := s.CreatePlaylist("road trip")
	require.NoError(t, err)

	_, err = s.CreatePlaylist("road trip")
	assert.Error(t, err, "playlist names are unique")
}

func TestRenamePlaylist(t *testing.T) {
	s := openTestStore(t)

	pid, err := s.CreatePlaylist("old name")
	require.NoError(t, err)

	require.NoError(t, s.RenamePlaylist(pid, "new name"))

	p, err := s.PlaylistByID(pid)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "new name", p.Name)
}

func TestDeletePlaylist_ClearsResume(t *testing.T) {
	s := openTestStore(t)
	tr := addTrack(t, s, "/music/a.mp3")

	pid, err := s.CreatePlaylist("p")
	require.NoError(t, err)
	require.NoError(t, s.AddPlaylistTracks(pid, []int64{tr.ID}))
	require.NoError(t, s.SaveResume(KindPlaylist, pid, tr.ID, time.Second))

	require.NoError(t, s.DeletePlaylist(pid))

	p, err := s.PlaylistByID(pid)
	require.NoError(t, err)
	assert.Nil(t, p)

	rp, err := s.Resume(KindPlaylist, pid)
	require.NoError(t, err)
	assert.Nil(t, rp, "resume point should not outlive its playlist")
}

func TestPlaylists_SortedByName(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"Zebra", "alpha", "Mango"} {
		_, err := s.CreatePlaylist(name)
		require.NoError(t, err)
	}

	playlists, err := s.Playlists()
	require.NoError(t, err)
	require.Len(t, playlists, 3)

	var names []string
	for _, p := range playlists {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"alpha", "Mango", "Zebra"}, names, "case-insensitive name order")
}

func TestTouchPlaylist_UpdatesLastUsed(t *testing.T) {
	s := openTestStore(t)

	pid, err := s.CreatePlaylist("p")
	require.NoError(t, err)

	before, err := s.PlaylistByID(pid)
	require.NoError(t, err)

	// last_used_at has second resolution
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, s.TouchPlaylist(pid))

	after, err := s.PlaylistByID(pid)
	require.NoError(t, err)
	assert.Greater(t, after.LastUsedAt, before.LastUsedAt)
}

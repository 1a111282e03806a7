package queue

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/store"
)

// fakeEngine records transport calls.
type fakeEngine struct {
	loads   []playback.Track
	plays   int
	stops   int
	loadErr error
}

func (f *fakeEngine) Load(t playback.Track) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loads = append(f.loads, t)
	return nil
}

func (f *fakeEngine) Play() { f.plays++ }
func (f *fakeEngine) Stop() { f.stops++ }

func (f *fakeEngine) lastLoad() *playback.Track {
	if len(f.loads) == 0 {
		return nil
	}
	return &f.loads[len(f.loads)-1]
}

// fakeLibrary serves container snapshots from memory.
type fakeLibrary struct {
	playlists map[int64][]store.Track
	folders   map[int64][]store.Track
	resumes   map[string]*store.ResumePoint
	saved     []string
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		playlists: make(map[int64][]store.Track),
		folders:   make(map[int64][]store.Track),
		resumes:   make(map[string]*store.ResumePoint),
	}
}

func resumeKey(kind store.ContainerKind, id int64) string {
	return fmt.Sprintf("%d/%d", kind, id)
}

func (f *fakeLibrary) PlaylistTracks(id int64) ([]store.Track, error) {
	return f.playlists[id], nil
}

func (f *fakeLibrary) TouchPlaylist(int64) error { return nil }

func (f *fakeLibrary) FolderTracks(id int64) ([]store.Track, error) {
	return f.folders[id], nil
}

func (f *fakeLibrary) Resume(kind store.ContainerKind, id int64) (*store.ResumePoint, error) {
	return f.resumes[resumeKey(kind, id)], nil
}

func (f *fakeLibrary) SaveResume(kind store.ContainerKind, id, trackID int64, offset time.Duration) error {
	f.resumes[resumeKey(kind, id)] = &store.ResumePoint{TrackID: trackID, Offset: offset}
	f.saved = append(f.saved, resumeKey(kind, id))
	return nil
}

func tracks(ids ...int64) []store.Track {
	out := make([]store.Track, len(ids))
	for i, id := range ids {
		out[i] = store.Track{ID: id, Path: fmt.Sprintf("/music/%d.mp3", id), Title: fmt.Sprintf("t%d", id)}
	}
	return out
}

func TestStartPlaylist_FromTrack(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11, 12)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 11); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	if kind, id := c.Active(); kind != KindPlaylist || id != 1 {
		t.Errorf("Active() = (%v, %d), want (playlist, 1)", kind, id)
	}
	if c.Index() != 1 {
		t.Errorf("Index() = %d, want 1", c.Index())
	}
	if got := eng.lastLoad(); got == nil || got.ID != 11 {
		t.Errorf("loaded track = %v, want ID 11", got)
	}
	if eng.plays != 1 {
		t.Errorf("plays = %d, want 1", eng.plays)
	}
}

func TestStartPlaylist_StaleTrackFallsBackToFirst(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 999); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	if c.Index() != 0 {
		t.Errorf("Index() = %d, want 0 (fallback)", c.Index())
	}
	if got := eng.lastLoad(); got == nil || got.ID != 10 {
		t.Errorf("loaded track = %v, want ID 10", got)
	}
}

func TestStartPlaylist_Empty(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err == nil {
		t.Error("StartPlaylist on an empty playlist should fail")
	}
	if kind, _ := c.Active(); kind != KindNone {
		t.Errorf("Active kind = %v, want none", kind)
	}
}

func TestStartPlaylist_LoadErrorKeepsPreviousTraversal(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10)
	lib.playlists[2] = tracks(20)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	eng.loadErr = errors.New("file missing")
	if err := c.StartPlaylist(2, 0); err == nil {
		t.Fatal("StartPlaylist with failing load should return an error")
	}

	if kind, id := c.Active(); kind != KindPlaylist || id != 1 {
		t.Errorf("Active() = (%v, %d), want previous traversal (playlist, 1)", kind, id)
	}
}

func TestAdvance_VisitsEveryItemOnceThenClears(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11, 12)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	// Two successful advances walk the remaining items in order
	if !c.Advance() || !c.Advance() {
		t.Fatal("Advance should succeed while items remain")
	}

	var visited []int64
	for _, tr := range eng.loads {
		visited = append(visited, tr.ID)
	}
	want := []int64{10, 11, 12}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}

	// Exhaustion clears the context
	if c.Advance() {
		t.Error("Advance past the last item should return false")
	}
	if kind, _ := c.Active(); kind != KindNone {
		t.Errorf("Active kind = %v, want none after exhaustion", kind)
	}

	// Further hooks are no-ops
	if c.Advance() {
		t.Error("Advance after exhaustion should remain a no-op")
	}
	if len(eng.loads) != 3 {
		t.Errorf("loads = %d, want 3 (no extra loads after exhaustion)", len(eng.loads))
	}
}

func TestRetreat(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 11); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	if !c.Retreat() {
		t.Fatal("Retreat from index 1 should succeed")
	}
	if c.Index() != 0 {
		t.Errorf("Index() = %d, want 0", c.Index())
	}

	// At the first item: no-op, traversal stays live
	if c.Retreat() {
		t.Error("Retreat at index 0 should return false")
	}
	if kind, _ := c.Active(); kind != KindPlaylist {
		t.Errorf("Active kind = %v, traversal should stay live", kind)
	}
}

func TestStartFolder_ResumesSavedState(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.folders[7] = tracks(30, 31, 32)
	lib.resumes[resumeKey(store.KindFolder, 7)] = &store.ResumePoint{TrackID: 31, Offset: 42 * time.Second}
	c := New(eng, lib)

	if err := c.StartFolder(7, true); err != nil {
		t.Fatalf("StartFolder failed: %v", err)
	}

	got := eng.lastLoad()
	if got == nil || got.ID != 31 {
		t.Fatalf("loaded track = %v, want ID 31", got)
	}
	if got.Offset != 42*time.Second {
		t.Errorf("Offset = %v, want 42s", got.Offset)
	}
	if c.Index() != 1 {
		t.Errorf("Index() = %d, want 1", c.Index())
	}
}

func TestStartFolder_NoResumeStartsAtZero(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	folderTracks := tracks(30, 31)
	folderTracks[0].Offset = 90 * time.Second // stored track offset must be ignored
	lib.folders[7] = folderTracks
	lib.resumes[resumeKey(store.KindFolder, 7)] = &store.ResumePoint{TrackID: 31, Offset: 42 * time.Second}
	c := New(eng, lib)

	if err := c.StartFolder(7, false); err != nil {
		t.Fatalf("StartFolder failed: %v", err)
	}

	got := eng.lastLoad()
	if got == nil || got.ID != 30 {
		t.Fatalf("loaded track = %v, want ID 30 (first item)", got)
	}
	if got.Offset != 0 {
		t.Errorf("Offset = %v, want 0 regardless of saved state", got.Offset)
	}
}

func TestStartFolder_ResumeWithoutSavedStateStartsAtZero(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	folderTracks := tracks(30, 31)
	folderTracks[0].Offset = 90 * time.Second // stale per-track offset
	lib.folders[7] = folderTracks
	c := New(eng, lib)

	// Resume requested, but nothing was ever saved for this folder
	if err := c.StartFolder(7, true); err != nil {
		t.Fatalf("StartFolder failed: %v", err)
	}

	got := eng.lastLoad()
	if got == nil || got.ID != 30 {
		t.Fatalf("loaded track = %v, want ID 30 (first item)", got)
	}
	if got.Offset != 0 {
		t.Errorf("Offset = %v, want 0 when no resume state is saved", got.Offset)
	}
}

func TestStartFolder_ResumeWithStaleTrackStartsAtZero(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	folderTracks := tracks(30, 31)
	folderTracks[0].Offset = 90 * time.Second
	lib.folders[7] = folderTracks
	// Saved state points at a track no longer in the folder
	lib.resumes[resumeKey(store.KindFolder, 7)] = &store.ResumePoint{TrackID: 999, Offset: 42 * time.Second}
	c := New(eng, lib)

	if err := c.StartFolder(7, true); err != nil {
		t.Fatalf("StartFolder failed: %v", err)
	}

	got := eng.lastLoad()
	if got == nil || got.ID != 30 || got.Offset != 0 {
		t.Errorf("loaded = %v, want ID 30 at offset 0 when the saved track is gone", got)
	}
}

func TestTraversals_MutuallyExclusive(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	lib.folders[7] = tracks(30, 31)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}
	if err := c.StartFolder(7, false); err != nil {
		t.Fatalf("StartFolder failed: %v", err)
	}

	kind, id := c.Active()
	if kind != KindFolder || id != 7 {
		t.Errorf("Active() = (%v, %d), want (folder, 7)", kind, id)
	}

	// Advancing walks the folder snapshot, not the playlist
	if !c.Advance() {
		t.Fatal("Advance should succeed")
	}
	if got := eng.lastLoad(); got == nil || got.ID != 31 {
		t.Errorf("loaded track = %v, want ID 31", got)
	}
}

func TestStop_ClearsTraversal(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	c.Stop()

	if eng.stops != 1 {
		t.Errorf("engine stops = %d, want 1", eng.stops)
	}
	if kind, _ := c.Active(); kind != KindNone {
		t.Errorf("Active kind = %v, want none after Stop", kind)
	}
	if c.Index() != -1 {
		t.Errorf("Index() = %d, want -1", c.Index())
	}
}

func TestRememberPosition(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	c.RememberPosition(playback.Track{ID: 10}, 33*time.Second)

	rp := lib.resumes[resumeKey(store.KindPlaylist, 1)]
	if rp == nil {
		t.Fatal("resume point not saved")
	}
	if rp.TrackID != 10 || rp.Offset != 33*time.Second {
		t.Errorf("resume = (%d, %v), want (10, 33s)", rp.TrackID, rp.Offset)
	}
}

func TestRememberPosition_NoTraversal(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	c := New(eng, lib)

	c.RememberPosition(playback.Track{ID: 10}, time.Second)

	if len(lib.saved) != 0 {
		t.Error("RememberPosition without a traversal should not save")
	}
}

func TestSnapshot_IgnoresLaterContainerChanges(t *testing.T) {
	eng := &fakeEngine{}
	lib := newFakeLibrary()
	lib.playlists[1] = tracks(10, 11)
	c := New(eng, lib)

	if err := c.StartPlaylist(1, 0); err != nil {
		t.Fatalf("StartPlaylist failed: %v", err)
	}

	// Mutate the underlying container after the snapshot was taken
	lib.playlists[1] = tracks(99)

	if !c.Advance() {
		t.Fatal("Advance should succeed against the snapshot")
	}
	if got := eng.lastLoad(); got == nil || got.ID != 11 {
		t.Errorf("loaded track = %v, want ID 11 from the snapshot", got)
	}
}

package player

import (
	"sync"
	"testing"
	"time"
)

// The engine polls a Mock from its tick loop while the test goroutine
// mutates it; both sides must be able to run concurrently.
func TestMock_ConcurrentAccess(t *testing.T) {
	m := NewMock()
	if err := m.Load("/music/a.mp3"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m.SetDuration(3 * time.Minute)
	m.Play()

	var wg sync.WaitGroup
	start := make(chan struct{})

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 1000; i++ {
			m.SetPosition(time.Duration(i) * time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < 1000; i++ {
			_ = m.State()
			_ = m.Position()
			_ = m.Duration()
		}
	}()

	close(start)
	wg.Wait()

	if got := m.Position(); got != 999*time.Millisecond {
		t.Errorf("Position = %v, want 999ms", got)
	}
}

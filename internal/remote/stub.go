//go:build !linux

package remote

import (
	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/queue"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *playback.Engine, _ *queue.Controller) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

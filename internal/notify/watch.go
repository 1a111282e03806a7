package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/library"
	"github.com/cadence-audio/cadence/internal/playback"
)

const trackNotifyTimeout = 4000 // ms

// Watch subscribes to the engine and raises a notification on every
// track change, replacing the previous one so changes don't stack up.
func Watch(ctx context.Context, engine *playback.Engine, notifier Notifier) {
	sub := engine.Subscribe()
	var lastID uint32

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			if ev.Current == nil {
				continue
			}
			id, err := notifier.Notify(trackNotification(*ev.Current, lastID))
			if err != nil {
				log.Debug().Err(err).Msg("track notification failed")
				continue
			}
			lastID = id
		}
	}
}

func trackNotification(t playback.Track, replaces uint32) Notification {
	body := t.Artist
	if t.Album != "" {
		if body != "" {
			body += " - "
		}
		body += t.Album
	}
	title := t.Title
	if title == "" {
		title = t.Path
	}
	return Notification{
		Title:      title,
		Body:       body,
		Icon:       library.FindAlbumArt(t.Path),
		Timeout:    trackNotifyTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}
}

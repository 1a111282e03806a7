package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/config"
	"github.com/cadence-audio/cadence/internal/control"
	"github.com/cadence-audio/cadence/internal/errmsg"
	"github.com/cadence-audio/cadence/internal/library"
	"github.com/cadence-audio/cadence/internal/logging"
	"github.com/cadence-audio/cadence/internal/notify"
	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/player"
	"github.com/cadence-audio/cadence/internal/queue"
	"github.com/cadence-audio/cadence/internal/remote"
	"github.com/cadence-audio/cadence/internal/stderr"
	"github.com/cadence-audio/cadence/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run() error {
	// Capture ALSA and codec noise on fd 2 before anything touches audio
	if err := stderr.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "stderr capture unavailable: %v\n", err)
	}
	defer stderr.Stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
	}); err != nil {
		return err
	}
	go func() {
		for line := range stderr.Messages {
			log.Debug().Str("source", "audio").Msg(line)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenDefault()
	if err != nil {
		return err
	}
	defer st.Close()

	scanner := library.NewScanner(st)
	if len(cfg.LibraryRoots) > 0 {
		start := time.Now()
		stats, err := scanner.Scan(ctx, cfg.LibraryRoots)
		if err != nil {
			log.Warn().Err(err).Msg("startup scan failed")
		} else {
			log.Info().Int("added", stats.Added).Int("updated", stats.Updated).
				Int("removed", stats.Removed).Dur("took", time.Since(start)).
				Msg("library scanned")
		}
	}

	session := player.New()
	engine := playback.New(session, st, playback.Options{
		TickForeground: cfg.TickForeground(),
		TickBackground: cfg.TickBackground(),
		SkipInterval:   cfg.SkipInterval(),
		Continuous:     cfg.Continuous(),
		Rate:           cfg.Rate(),
	})
	defer engine.Close()

	controller := queue.New(engine, st)
	engine.SetAdvancer(controller)

	adapter, err := remote.New(engine, controller)
	if err != nil {
		log.Warn().Err(err).Msg("media remote unavailable")
	} else {
		defer adapter.Close()
	}

	if notifier, err := notify.New(); err == nil {
		go notify.Watch(ctx, engine, notifier)
	}

	loop := control.New(engine, controller, st, scanner, cfg.LibraryRoots)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	controller.Stop()
	return nil
}

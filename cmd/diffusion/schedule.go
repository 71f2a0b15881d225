package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// runScheduled runs job on the cron schedule spec until ctx is cancelled.
// Runs never overlap; a tick that fires while a run is in progress waits for it.
func runScheduled(ctx context.Context, spec string, log zerolog.Logger, job func(context.Context) error) error {
	c := cron.New(cron.WithSeconds())

	var mu sync.Mutex
	_, err := c.AddFunc(spec, func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}

		log.Info().Str("schedule", spec).Msg("running scheduled generation")
		if err := job(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled generation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info().Str("schedule", spec).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
	return nil
}

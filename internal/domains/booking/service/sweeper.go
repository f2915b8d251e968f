package service

import (
	"context"
	"time"

	"visit/config"

	"github.com/rs/zerolog/log"
)

const defaultSweepInterval = 5 * time.Minute

// SweepInterval returns how often elapsed confirmed bookings are completed.
func SweepInterval(cfg *config.Config) time.Duration {
	if cfg.Scheduling.CompletionSweepSeconds <= 0 {
		return defaultSweepInterval
	}

	return time.Duration(cfg.Scheduling.CompletionSweepSeconds) * time.Second
}

// RunCompletionSweep calls CompleteElapsed every period until ctx is done.
func RunCompletionSweep(ctx context.Context, ledger Ledger, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info().Dur("period", period).Msg("Booking completion sweep started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Booking completion sweep stopped")

			return
		case <-ticker.C:
			completed, err := ledger.CompleteElapsed(ctx)
			if err != nil {
				log.Error().Err(err).Msg("booking completion sweep failed")

				continue
			}

			if completed > 0 {
				log.Info().Int("completed", completed).Msg("completed elapsed bookings")
			}
		}
	}
}

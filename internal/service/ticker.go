package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Ticker drives both engines on a fixed wall-clock period. One minute
// of real time is one minute of simulated time. Engines run
// sequentially on the ticker goroutine, so no tick overlaps another.
type Ticker struct {
	interval time.Duration
	movement *MovementEngine
	status   *StatusEngine
}

// NewTicker creates a Ticker. interval <= 0 selects the standard
// one-minute period.
func NewTicker(interval time.Duration, movement *MovementEngine, status *StatusEngine) *Ticker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Ticker{interval: interval, movement: movement, status: status}
}

// Start runs the tick loop until the context is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", t.interval).Msg("Simulation ticker started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Simulation ticker stopped")
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	start := time.Now()
	t.movement.Tick(ctx)
	t.status.Tick(ctx)
	log.Debug().Dur("elapsed", time.Since(start)).Msg("Tick complete")
}

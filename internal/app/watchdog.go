package app

import (
	"context"
	"log"
	"time"
)

// Watchdog drives the countdown of every active attempt on a fixed cadence,
// independent of client interaction, so auto-submit-on-timeout fires even for
// a client that went away. One second is the contract the state machine's
// tick assumes.
type Watchdog struct {
	service  *AttemptService
	interval time.Duration
}

func NewWatchdog(service *AttemptService, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watchdog{service: service, interval: interval}
}

// Run blocks until ctx is canceled, ticking all active attempts once per
// interval.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, session := range w.service.activeSessions(ctx) {
				if err := w.service.tickSession(ctx, session); err != nil {
					log.Printf("watchdog: tick attempt %s: %v", session.ID(), err)
				}
			}
		}
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/feupindustrial/erp-orders-service/internal/logger"
)

// Start launches the daily trigger: one pass at the configured wall-clock
// time ("HH:MM"), every 24h, until the context is cancelled. The dispatcher's
// own mutex keeps a long pass from overlapping the next trigger.
func (d *Dispatcher) Start(ctx context.Context, syncTime string) error {
	hour, minute, err := parseSyncTime(syncTime)
	if err != nil {
		return err
	}

	go func() {
		next := nextRun(time.Now(), hour, minute)
		logger.Info("dispatch schedule armed", "at", syncTime, "next", next)
		timer := time.NewTimer(time.Until(next))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				if err := d.RunPass(ctx); err != nil {
					logger.Error("dispatch pass failed", "err", err)
				}
				next = next.Add(24 * time.Hour)
				timer.Reset(time.Until(next))
			}
		}
	}()
	return nil
}

func parseSyncTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad sync time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// nextRun returns the next wall-clock occurrence of hour:minute strictly
// after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

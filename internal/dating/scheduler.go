// internal/dating/scheduler.go

package dating

import (
    "context"
    "log"
    "time"
)

// Scheduler drives the periodic boost expiry sweep. Expiry is lazy on the
// read path; the sweep only keeps the table tidy.
type Scheduler struct {
    boosts   BoostPolicy
    interval time.Duration
}

func NewScheduler(boosts BoostPolicy, interval time.Duration) *Scheduler {
    return &Scheduler{boosts: boosts, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) {
    go s.runSweep(ctx)
}

func (s *Scheduler) runSweep(ctx context.Context) {
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            expired, err := s.boosts.ExpireOldBoosts(ctx)
            if err != nil {
                log.Printf("Boost expiry sweep failed: %v", err)
                continue
            }
            if expired > 0 {
                log.Printf("Boost expiry sweep deactivated %d boosts", expired)
            }
        case <-ctx.Done():
            return
        }
    }
}

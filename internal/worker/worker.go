package worker

import (
	"context"
	"log/slog"
	"time"
)

// Compactor removes expired rows; the expectation ledger satisfies it.
// Postgres has no TTL index, so expiry is enforced by this sweep plus the
// expires_at check on every lookup.
type Compactor interface {
	Compact(ctx context.Context) (int64, error)
}

// ExpectationSweeper periodically drops expired, never-matched expectations.
type ExpectationSweeper struct {
	compactor Compactor
	interval  time.Duration
}

func NewExpectationSweeper(compactor Compactor) *ExpectationSweeper {
	return &ExpectationSweeper{
		compactor: compactor,
		interval:  time.Minute,
	}
}

func (s *ExpectationSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("expectation sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := s.compactor.Compact(ctx)
			if err != nil {
				slog.Error("expectation compaction failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("compacted expired expectations", "removed", removed)
			}
		}
	}
}

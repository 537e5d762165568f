// Package dedup suppresses redelivery of the same logical webhook event
// within a short TTL window. The window is advisory: every sync handler
// still checks ledger-side state before creating anything, so a missed
// suppression cannot corrupt financial data.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dedup:"

type Window struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewWindow(rdb *redis.Client, ttl time.Duration) *Window {
	return &Window{rdb: rdb, ttl: ttl}
}

// Admit reports whether the event should be processed. The first delivery
// of a key claims it via SETNX with the window TTL; later deliveries inside
// the TTL are duplicates. Redis being unreachable fails open — the event is
// admitted and the error returned for logging.
func (w *Window) Admit(ctx context.Context, topic string, body []byte) (bool, error) {
	key, err := Key(topic, body)
	if err != nil {
		return true, err
	}

	claimed, err := w.rdb.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), w.ttl).Result()
	if err != nil {
		return true, err
	}

	return claimed, nil
}

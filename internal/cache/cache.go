package cache

import (
	"context"
	"time"
)

// BytesCache is the minimal contract the lookup service needs for the
// per-session last-order key. A nil cache disables persistence.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

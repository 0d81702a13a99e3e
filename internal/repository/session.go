package repository

import (
	"context"
	"fmt"
	"time"
)

// SessionStore is an opaque key -> JSON blob cache with optional TTL.
// Get reports found=false for a missing key; errors are reserved for store failures.
type SessionStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const probeValue = "OK"

// Probe performs a set/get/delete round trip against the store using a
// short-lived key. It is used by the startup check and the health endpoint.
func Probe(ctx context.Context, store SessionStore, key string, ttl time.Duration) error {
	if err := store.Set(ctx, key, probeValue, ttl); err != nil {
		return fmt.Errorf("failed to set probe key: %w", err)
	}

	value, found, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get probe key: %w", err)
	}
	if !found || value != probeValue {
		return fmt.Errorf("probe key round trip mismatch: found=%t value=%q", found, value)
	}

	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete probe key: %w", err)
	}
	return nil
}

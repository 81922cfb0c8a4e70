// Package cache keeps recently used conversation transcripts close to the
// coaching service. It is a fallback for reads when the database fails and is
// never the source of truth.
package cache

import (
	"context"
	"errors"
	"fmt"
)

// ErrCacheMiss is returned when no transcript is cached for the key
var ErrCacheMiss = errors.New("cache: key not found")

// ContextCache stores transcripts per user and mode
type ContextCache interface {
	Get(ctx context.Context, userID, mode string) (string, error)
	Set(ctx context.Context, userID, mode, transcript string) error
	Invalidate(ctx context.Context, userID, mode string) error
	InvalidateUser(ctx context.Context, userID string) error
	Close() error
}

const keyPrefix = "smartspeak:ctx:"

// Key returns the cache key of a user's transcript for a mode
func Key(userID, mode string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, userID, mode)
}

func userPattern(userID string) string {
	return fmt.Sprintf("%s%s:*", keyPrefix, userID)
}

// Package storage persists finalized asset bytes in an object store.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Store keeps finalized asset binaries addressed by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, mediaType string) error
	// Get returns common.ErrorNotFound for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// PresignGet returns a time-limited download URL for key.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// AssetKey is the object key of a submission's finalized asset.
func AssetKey(submissionID int64) string {
	return fmt.Sprintf("submissions/%d/asset", submissionID)
}

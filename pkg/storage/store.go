package storage

import (
	"context"
	"errors"

	"profilegram/pkg/models"
)

// ErrNotFound signals that no snapshot exists for a username. A read miss
// is a signal, not a failure: callers fall through to a fresh scrape.
var ErrNotFound = errors.New("snapshot not found")

// Store is the persistence gateway for profile snapshots. Upsert overwrites
// any prior snapshot for the username, last write wins.
type Store interface {
	Upsert(ctx context.Context, username string, snapshot *models.ProfileSnapshot) error
	Get(ctx context.Context, username string) (*models.ProfileSnapshot, error)
	Name() string
}

// ObjectPutter is the blob-store contract the media relocator needs: write
// bytes under a key and get back a stable public URL.
type ObjectPutter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

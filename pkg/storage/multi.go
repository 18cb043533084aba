package storage

import (
	"context"
	"errors"
	"fmt"

	"profilegram/pkg/logger"
	"profilegram/pkg/models"
)

// Multi fans writes out to a set of configured backends and reads from
// them in priority order. One configurable gateway replaces what would
// otherwise be a separate pipeline per storage target.
type Multi struct {
	stores []Store
	logger logger.Logger
}

// NewMulti wraps the given stores. Order matters: reads try stores front
// to back and return the first hit.
func NewMulti(stores []Store, log logger.Logger) *Multi {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Multi{stores: stores, logger: log}
}

func (m *Multi) Name() string { return "multi" }

// Upsert writes to every backend. A failure in one backend is logged and
// does not block the others; the call fails only when every backend fails.
func (m *Multi) Upsert(ctx context.Context, username string, snapshot *models.ProfileSnapshot) error {
	var errs []error
	for _, store := range m.stores {
		if err := store.Upsert(ctx, username, snapshot); err != nil {
			m.logger.WarnWithFields("snapshot write failed", map[string]interface{}{
				"store":    store.Name(),
				"username": username,
				"error":    err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		}
	}

	if len(errs) == len(m.stores) && len(errs) > 0 {
		return fmt.Errorf("all storage targets failed: %w", errors.Join(errs...))
	}
	return nil
}

// Get returns the first snapshot found. A miss in one backend falls
// through to the next; a real read error does too, but is logged.
func (m *Multi) Get(ctx context.Context, username string) (*models.ProfileSnapshot, error) {
	for _, store := range m.stores {
		snapshot, err := store.Get(ctx, username)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, ErrNotFound) {
			m.logger.WarnWithFields("snapshot read failed", map[string]interface{}{
				"store":    store.Name(),
				"username": username,
				"error":    err.Error(),
			})
		}
	}
	return nil, ErrNotFound
}

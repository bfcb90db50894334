// Package slot persists one named JSON value. The rating-event log lives in a
// single slot and is always read and written whole.
package slot

import (
	"context"
	"errors"
)

const DefaultKey = "rating_events"

// ErrNotFound means the slot has never been written.
var ErrNotFound = errors.New("slot not found")

type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, value []byte) error
	Close() error
}

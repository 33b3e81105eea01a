package store

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by Slot.Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot in slot")

// Slot is a single named key-value byte slot.
// The Store reads and writes it verbatim as an opaque blob.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

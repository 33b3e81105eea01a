package store

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// maxSafeID keeps generated ids inside the range a JSON number survives in a
// browser (2^53 - 1).
const maxSafeID = 1<<53 - 1

// IDSource yields candidate ids for new Local records. Candidates may collide;
// the Store checks them.
type IDSource interface {
	NextID() int64
}

// TimeIDs derives ids from the clock in Unix milliseconds.
type TimeIDs struct {
	Clock Clock
}

// NextID returns the current time in milliseconds.
func (t TimeIDs) NextID() int64 {
	return t.Clock.Now().UnixMilli()
}

// RandomIDs derives ids from random (version 4) UUIDs.
type RandomIDs struct{}

// NextID returns a positive id built from the first 8 bytes of a new UUID.
func (RandomIDs) NextID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[:8]) & maxSafeID)
	if id == 0 {
		return 1
	}
	return id
}

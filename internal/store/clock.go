package store

import "time"

// Clock supplies CreatedAt for new Local records.
type Clock interface {
	Now() time.Time
}

// SystemClock reads wall time at millisecond precision, the precision the
// snapshot stores, so a reloaded record compares equal to the one written.
type SystemClock struct{}

// Now returns the current UTC time truncated to the millisecond.
func (SystemClock) Now() time.Time {
	return time.UnixMilli(time.Now().UnixMilli()).UTC()
}

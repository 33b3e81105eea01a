package directory

import (
	"errors"
	"fmt"
)

// ErrFetch matches every *FetchError via errors.Is.
var ErrFetch = errors.New("directory fetch failed")

// ErrNotFound is wrapped by the FetchError a detail lookup returns on 404.
var ErrNotFound = errors.New("user not found in directory")

// FetchError describes a failed directory request. The request produced no
// usable data; there are no partial results.
type FetchError struct {
	Op     string // "list" or "detail"
	URL    string
	Status int // HTTP status, 0 when no response was read
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("directory %s %s: status %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("directory %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// IsNotFound reports whether err is a detail lookup for an unknown id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

package session

import (
	"context"
	"errors"
)

// HydrateOutcome says what a hydration attempt did.
type HydrateOutcome string

const (
	HydrateFetched HydrateOutcome = "fetched"
	HydrateSkipped HydrateOutcome = "skipped"
	HydrateFailed  HydrateOutcome = "failed"
)

// HydrateResult is the outcome of the session's single hydration attempt.
type HydrateResult struct {
	Outcome HydrateOutcome `json:"outcome" yaml:"outcome"`
	Records int            `json:"records" yaml:"records"`
	Err     error          `json:"-" yaml:"-"`
}

// errNoFetcher is returned when an empty store needs hydrating but the
// session was built without a Fetcher.
var errNoFetcher = errors.New("session has no directory fetcher")

// Hydrate fills an empty store from the directory.
//
// It runs at most once per Session; later calls return the first result.
// When the store already holds records the fetch is skipped, so local edits
// are never replaced. A failed fetch leaves the store untouched and the
// error is returned.
func (s *Session) Hydrate(ctx context.Context) (HydrateResult, error) {
	s.hydrateOnce.Do(func() {
		s.hydrateResult = s.hydrate(ctx)
	})
	return s.hydrateResult, s.hydrateResult.Err
}

func (s *Session) hydrate(ctx context.Context) HydrateResult {
	if n := s.store.Len(); n > 0 {
		s.logger.Debug("hydrate skipped, store not empty", "records", n)
		return HydrateResult{Outcome: HydrateSkipped, Records: n}
	}
	if s.fetcher == nil {
		return HydrateResult{Outcome: HydrateFailed, Err: errNoFetcher}
	}

	records, err := s.fetcher.FetchUsers(ctx)
	if err != nil {
		return HydrateResult{Outcome: HydrateFailed, Err: err}
	}

	s.store.ReplaceAll(ctx, records)
	return HydrateResult{Outcome: HydrateFetched, Records: len(records)}
}

// Package session implements the user-facing operations over a record store:
// search, sort, page navigation and validated add/update/delete.
//
// A Session holds the current view parameters. Every View call recomputes the
// page from the store, so mutations are visible immediately.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/erdilatifi/User-Management-App/internal/query"
	"github.com/erdilatifi/User-Management-App/internal/record"
	"github.com/erdilatifi/User-Management-App/internal/store"
	"github.com/erdilatifi/User-Management-App/internal/telemetry"
)

// Fetcher retrieves the remote directory as Remote records.
type Fetcher interface {
	FetchUsers(ctx context.Context) ([]record.Record, error)
}

// EmptyState tells an empty page apart by cause.
type EmptyState string

const (
	// EmptyNone means the current page has records, or the filter matched
	// something on another page.
	EmptyNone EmptyState = "none"
	// EmptyStore means there are no records at all.
	EmptyStore EmptyState = "store_empty"
	// EmptyNoMatches means records exist but none pass the current filter.
	EmptyNoMatches EmptyState = "no_matches"
)

// Session is the single logical client of a Store.
type Session struct {
	store     *store.Store
	fetcher   Fetcher
	validator *record.Validator
	logger    *slog.Logger

	mu     sync.Mutex
	params query.Params

	hydrateOnce   sync.Once
	hydrateResult HydrateResult
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithValidator sets the input validator. A shared one avoids recompiling
// the schema per session.
func WithValidator(v *record.Validator) Option {
	return func(s *Session) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithPageSize sets the page size. Values below 1 keep the default.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.params.PageSize = n
		}
	}
}

// WithParams sets the initial view parameters.
func WithParams(p query.Params) Option {
	return func(s *Session) {
		s.params = p
	}
}

// New creates a Session over st. fetcher may be nil when the session never
// hydrates from the directory.
func New(st *store.Store, fetcher Fetcher, opts ...Option) *Session {
	s := &Session{
		store:   st,
		fetcher: fetcher,
		logger:  telemetry.DiscardLogger(),
		params:  query.DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = record.MustNewValidator()
	}
	if s.params.Page < 1 {
		s.params.Page = 1
	}
	return s
}

// Store returns the underlying store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Params returns the current view parameters.
func (s *Session) Params() query.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Search sets the free-text filter and returns to page 1.
func (s *Session) Search(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Search = text
	s.params.Page = 1
}

// SetSort sets the Remote ordering and returns to page 1.
func (s *Session) SetSort(by query.SortKey, order query.SortOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.SortBy = by
	s.params.SortOrder = order
	s.params.Page = 1
}

// SetWhere sets the optional predicate filter and returns to page 1.
// A nil predicate removes it.
func (s *Session) SetWhere(p *query.Predicate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Where = p
	s.params.Page = 1
}

// GoToPage moves to page n, clamped into [1, TotalPages] for the current
// filter, and returns the page actually selected.
func (s *Session) GoToPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := query.Filter(s.store.Records(), s.params.Search, s.params.Where)
	total := query.TotalPages(len(matched), s.params.PageSize)
	s.params.Page = min(max(n, 1), total)
	return s.params.Page
}

// NextPage and PrevPage step one page, clamped.
func (s *Session) NextPage() int { return s.GoToPage(s.Params().Page + 1) }

func (s *Session) PrevPage() int { return s.GoToPage(s.Params().Page - 1) }

// View computes the current page. The page number is used as set; a page
// left out of range by a deletion yields no items until GoToPage is called.
func (s *Session) View() query.Page {
	return query.Compute(s.store.Records(), s.Params())
}

// EmptyState reports why the current filter shows nothing, if it does.
func (s *Session) EmptyState() EmptyState {
	records := s.store.Records()
	if len(records) == 0 {
		return EmptyStore
	}
	p := s.Params()
	if len(query.Filter(records, p.Search, p.Where)) == 0 {
		return EmptyNoMatches
	}
	return EmptyNone
}

// Get returns the stored record with the given id.
func (s *Session) Get(id int64) (record.Record, bool) {
	return s.store.Get(id)
}

// AddUser trims and validates the input, then creates a Local record at the
// top of the store. A *record.ValidationError leaves the store untouched.
func (s *Session) AddUser(ctx context.Context, name, email, organization string) (record.Record, error) {
	in := record.Input{Name: name, Email: email, Organization: organization}.Trimmed()
	if err := s.validator.ValidateInput(in); err != nil {
		return record.Record{}, err
	}

	r := s.store.AddAtTop(ctx, in)
	s.logger.Debug("user added", "id", r.ID)
	return r, nil
}

// UpdateUser trims and validates the patch, then applies it. The bool is
// false when no record has the id; that is not an error. A blank
// organization becomes the placeholder.
func (s *Session) UpdateUser(ctx context.Context, id int64, patch record.Patch) (record.Record, bool, error) {
	patch = patch.Trimmed()
	if err := s.validator.ValidatePatch(patch); err != nil {
		return record.Record{}, false, err
	}
	if patch.Organization != nil {
		org := record.OrPlaceholder(*patch.Organization)
		patch.Organization = &org
	}

	r, ok := s.store.Update(ctx, id, patch)
	if !ok {
		s.logger.Debug("update ignored, unknown id", "id", id)
		return record.Record{}, false, nil
	}
	s.logger.Debug("user updated", "id", id)
	return r, true, nil
}

// DeleteUser removes the record with the given id and reports whether it
// existed.
func (s *Session) DeleteUser(ctx context.Context, id int64) bool {
	ok := s.store.Delete(ctx, id)
	if !ok {
		s.logger.Debug("delete ignored, unknown id", "id", id)
	}
	return ok
}

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// Mutation names reported to the Observer.
const (
	OpReplaceAll = "replace_all"
	OpAdd        = "add"
	OpUpdate     = "update"
	OpDelete     = "delete"
)

// Observer receives store events. Implementations must be cheap and must not
// call back into the Store.
type Observer interface {
	ObserveMutation(op string, size int)
	ObservePersistFailure(op string)
}

type nopObserver struct{}

func (nopObserver) ObserveMutation(string, int)  {}
func (nopObserver) ObservePersistFailure(string) {}

// Store is the sole owner of the record set.
//
// Records are kept in stored order: ReplaceAll installs its list as given and
// AddAtTop prepends. Mutations are serialised by an internal mutex; the store
// assumes a single logical client and offers no multi-writer semantics beyond
// that.
type Store struct {
	mu       sync.Mutex
	records  []record.Record
	slot     Slot
	clock    Clock
	ids      IDSource
	fallback IDSource
	observer Observer
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for CreatedAt and time-based ids.
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithIDSources overrides the primary and fallback id sources.
func WithIDSources(primary, fallback IDSource) Option {
	return func(s *Store) {
		s.ids = primary
		s.fallback = fallback
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty Store bound to slot. Call Load to rehydrate.
func New(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:     slot,
		clock:    SystemClock{},
		fallback: RandomIDs{},
		observer: nopObserver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = TimeIDs{Clock: s.clock}
	}
	return s
}

// Load replaces the in-memory set with the slot's snapshot. An empty slot,
// an unreadable slot and a mismatched snapshot all leave the store empty.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil

	data, err := s.slot.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		s.logger.Debug("no prior snapshot")
		return
	}
	if err != nil {
		s.logger.Warn("snapshot unreadable, starting empty", "error", err)
		return
	}

	records, err := DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("snapshot rejected, starting empty", "error", err)
		return
	}

	s.records = records
	s.logger.Debug("snapshot loaded", "records", len(records))
}

// ReplaceAll discards the current set and installs records verbatim.
// No validation is performed.
func (s *Store) ReplaceAll(ctx context.Context, records []record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = cloneAll(records)
	s.persist(ctx, OpReplaceAll)
}

// AddAtTop creates a Local record from in and places it first.
// The caller is responsible for validating in.
func (s *Store) AddAtTop(ctx context.Context, in record.Input) record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.clock.Now()
	r := record.Record{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		Organization: record.OrPlaceholder(in.Organization),
		Origin:       record.Local,
		CreatedAt:    &created,
	}

	s.records = slices.Insert(s.records, 0, r)
	s.persist(ctx, OpAdd)
	return r.Clone()
}

// Update merges patch into the record with the given id. It is a no-op
// returning false when the id is unknown.
func (s *Store) Update(ctx context.Context, id int64, patch record.Patch) (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, false
	}

	s.records[i] = patch.Apply(s.records[i])
	s.persist(ctx, OpUpdate)
	return s.records[i].Clone(), true
}

// Delete removes the record with the given id. It is a no-op returning false
// when the id is unknown.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.records = slices.Delete(s.records, i, i+1)
	s.persist(ctx, OpDelete)
	return true
}

// Records returns a copy of the set in stored order.
func (s *Store) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(id int64) (record.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return record.Record{}, false
	}
	return s.records[i].Clone(), true
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// IsEmpty reports whether the store holds no records.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// persist writes the full set to the slot. Must be called with mu held.
// Failures are logged and observed, never returned.
func (s *Store) persist(ctx context.Context, op string) {
	s.observer.ObserveMutation(op, len(s.records))

	data, err := EncodeSnapshot(s.records)
	if err == nil {
		err = s.slot.Save(ctx, data)
	}
	if err != nil {
		s.observer.ObservePersistFailure(op)
		s.logger.Error("persist failed", "op", op, "records", len(s.records), "error", err)
	}
}

// newID returns an id that no current record uses. Must be called with mu held.
func (s *Store) newID() int64 {
	id := s.ids.NextID()
	for id <= 0 || s.indexOf(id) >= 0 {
		id = s.fallback.NextID()
	}
	return id
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.records, func(r record.Record) bool {
		return r.ID == id
	})
}

func cloneAll(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

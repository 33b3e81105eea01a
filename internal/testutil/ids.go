package testutil

import "sync"

// SequenceIDs hands out a fixed list of candidate ids, then repeats the last one.
//
// Useful to force id collisions in store tests. An empty list yields 1 forever.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu  sync.Mutex
	ids []int64
	pos int
}

// NewSequenceIDs creates a source that returns ids in order.
func NewSequenceIDs(ids ...int64) *SequenceIDs {
	return &SequenceIDs{ids: ids}
}

// NextID returns the next id in the sequence.
func (s *SequenceIDs) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ids) == 0 {
		return 1
	}
	id := s.ids[s.pos]
	if s.pos < len(s.ids)-1 {
		s.pos++
	}
	return id
}

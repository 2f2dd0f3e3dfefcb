package testutil

import "sync"

// Sequence hands out monotonically increasing ids starting at 1.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu  sync.Mutex
	seq int64
}

// NewSequence creates a sequence whose first Next() returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments and returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the last id handed out without incrementing.
func (s *Sequence) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset restarts the sequence. The next call to Next() returns 1.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}

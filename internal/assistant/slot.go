package assistant

import (
	"context"
	"sync"
)

// Ticket identifies one issued inquiry.
type Ticket uint64

// Slot is a single-slot in-flight guard. Beginning a new inquiry cancels the
// one in flight; only the newest ticket may apply its result.
type Slot struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin supersedes any in-flight inquiry and returns the context the new
// request must run under.
func (s *Slot) Begin(ctx context.Context) (context.Context, Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		supersededCounter.Add(ctx, 1)
	}
	s.seq++
	ctx, s.cancel = context.WithCancel(ctx)
	return ctx, Ticket(s.seq)
}

// Finish releases t. It reports false when t was superseded, in which case
// the caller must discard its result.
func (s *Slot) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.seq || s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// Busy is the loading flag: an inquiry is in flight.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Abort cancels the in-flight inquiry, if any, so its result is discarded.
func (s *Slot) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

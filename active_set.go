package mpmq

import "sync"

// activeSet tracks launched, not-yet-completed workers by offset. The
// scheduler loop is its only mutator, but TerminateProcesses is part of the
// public API and may be called from any goroutine, so reads and writes are
// guarded.
type activeSet struct {
	mu      sync.Mutex
	workers map[int]*workerRecord
}

func newActiveSet() *activeSet {
	return &activeSet{workers: make(map[int]*workerRecord)}
}

func (s *activeSet) add(w *workerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.offset] = w
}

// remove pops the worker at offset. ok is false if no such worker is active,
// which the scheduler treats as a protocol violation (a DONE for an offset
// that was never launched, or launched and already completed).
func (s *activeSet) remove(offset int) (*workerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[offset]
	if ok {
		delete(s.workers, offset)
	}
	return w, ok
}

func (s *activeSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// live returns a snapshot of the current workers, for kill-on-teardown
// iteration outside the lock.
func (s *activeSet) live() []*workerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*workerRecord, 0, len(s.workers))
	for _, w := range s.workers {
		out = append(out, w)
	}
	return out
}

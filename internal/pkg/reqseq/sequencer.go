// Package reqseq tags loads with a monotonically increasing generation so a
// result that arrives after a newer load, or after an invalidation, can be
// recognised as stale and discarded.
package reqseq

import (
	"strings"
	"sync"
)

// Ticket identifies one issued load
type Ticket struct {
	Key   string
	Seq   uint64
	epoch uint64
}

// Sequencer hands out tickets per key and tracks invalidation epochs per namespace.
// The namespace of a key is the segment before its first ':'.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
	epochs map[string]uint64
}

// New creates an empty Sequencer
func New() *Sequencer {
	return &Sequencer{
		latest: make(map[string]uint64),
		epochs: make(map[string]uint64),
	}
}

// Namespace returns the namespace segment of a key
func Namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Issue records a new load for key and returns its ticket
func (s *Sequencer) Issue(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.latest[key] = s.next
	return Ticket{Key: key, Seq: s.next, epoch: s.epochs[Namespace(key)]}
}

// Accept reports whether the ticket's result may be stored: it must still be the
// latest ticket issued for its key and its namespace must not have been
// invalidated since it was issued.
func (s *Sequencer) Accept(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest[t.Key] != t.Seq {
		return false
	}
	if s.epochs[Namespace(t.Key)] != t.epoch {
		return false
	}
	delete(s.latest, t.Key)
	return true
}

// Release forgets the ticket's load when it ended without being accepted. A
// newer ticket for the same key is left in place.
func (s *Sequencer) Release(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest[t.Key] == t.Seq {
		delete(s.latest, t.Key)
	}
}

// Outstanding is the number of keys with a load still in flight
func (s *Sequencer) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}

// Invalidate advances the epoch of the prefix's namespace, making every
// outstanding ticket in it stale.
func (s *Sequencer) Invalidate(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epochs[Namespace(prefix)]++
}

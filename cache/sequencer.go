package cache

import "sync"

// Ticket identifies one request issued against a cache key.
type Ticket struct {
	Key string
	seq uint64
}

// Sequencer tracks the latest request per key so that a slow response never
// overwrites the result of a request issued after it.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: map[string]uint64{}}
}

// Begin issues a ticket that supersedes every earlier ticket for key.
func (s *Sequencer) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key]++
	return Ticket{Key: key, seq: s.latest[key]}
}

// IsLatest reports whether no newer ticket was issued for t.Key.
func (s *Sequencer) IsLatest(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[t.Key] == t.seq
}

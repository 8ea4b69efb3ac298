package subscription

import "sync"

// Set is the feed's subscription registry, keyed by configuration.
// Lifecycle methods touch it from the host thread; the read lock covers
// the slice loop taking snapshots.
type Set struct {
	mu   sync.RWMutex
	subs map[Config]*Subscription
}

func NewSet() *Set {
	return &Set{subs: make(map[Config]*Subscription)}
}

// Add registers the subscription. Returns false when the configuration is
// already present.
func (s *Set) Add(sub *Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := sub.Configuration()
	if _, exists := s.subs[cfg]; exists {
		return false
	}
	s.subs[cfg] = sub
	return true
}

// Remove unregisters and returns the subscription for cfg.
func (s *Set) Remove(cfg Config) (*Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[cfg]
	if ok {
		delete(s.subs, cfg)
	}
	return sub, ok
}

func (s *Set) Get(cfg Config) (*Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[cfg]
	return sub, ok
}

// All snapshots the current subscriptions in no particular order.
func (s *Set) All() []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

package support

import (
	"sync"

	"go.uber.org/zap"
)

// AdminSessions holds one Aggregator per signed-in admin. Projections are
// independent: two admins each see their own grouping and selection, and a
// deletion by one shows up for the other on their next reload. Nothing is
// shared or locked across sessions.
type AdminSessions struct {
	store MessageStore
	pub   Publisher
	log   *zap.SugaredLogger

	mu       sync.RWMutex
	sessions map[string]*Aggregator
	refs     map[string]int
}

func NewAdminSessions(store MessageStore, pub Publisher, log *zap.SugaredLogger) *AdminSessions {
	return &AdminSessions{
		store:    store,
		pub:      pub,
		log:      log,
		sessions: map[string]*Aggregator{},
		refs:     map[string]int{},
	}
}

func (s *AdminSessions) Acquire(adminID string) *Aggregator {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.sessions[adminID]
	if !ok {
		agg = NewAggregator(s.store, s.pub, s.log)
		s.sessions[adminID] = agg
	}
	s.refs[adminID]++
	return agg
}

func (s *AdminSessions) Release(adminID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[adminID]--
	if s.refs[adminID] <= 0 {
		delete(s.refs, adminID)
		delete(s.sessions, adminID)
	}
}

// Dispatch feeds one stream delivery into every active admin projection.
func (s *AdminSessions) Dispatch(m Message) {
	s.mu.RLock()
	aggs := make([]*Aggregator, 0, len(s.sessions))
	for _, agg := range s.sessions {
		aggs = append(aggs, agg)
	}
	s.mu.RUnlock()
	for _, agg := range aggs {
		agg.OnMessageInserted(m)
	}
}

package support

import (
	"sync"

	"go.uber.org/zap"
)

// Registry hands out at most one Inbox per end user and fans stream
// deliveries into them. Inboxes are released on view teardown; a delivery for
// a user with no active inbox is simply dropped (the next LoadOwn rebuilds
// from the store).
type Registry struct {
	store   MessageStore
	pub     Publisher
	limiter *SendLimiter
	log     *zap.SugaredLogger

	mu      sync.RWMutex
	inboxes map[string]*Inbox
	refs    map[string]int
}

func NewRegistry(store MessageStore, pub Publisher, limiter *SendLimiter, log *zap.SugaredLogger) *Registry {
	return &Registry{
		store:   store,
		pub:     pub,
		limiter: limiter,
		log:     log,
		inboxes: map[string]*Inbox{},
		refs:    map[string]int{},
	}
}

// Acquire returns the user's inbox, creating it on first use. Release must be
// called once per Acquire.
func (r *Registry) Acquire(userID, userEmail string) *Inbox {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.inboxes[userID]
	if !ok {
		in = NewInbox(userID, userEmail, r.store, r.pub, r.limiter, r.log)
		r.inboxes[userID] = in
	}
	r.refs[userID]++
	return in
}

func (r *Registry) Release(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[userID]--
	if r.refs[userID] <= 0 {
		delete(r.refs, userID)
		delete(r.inboxes, userID)
	}
}

// Dispatch routes one stream delivery to the owning inbox, if any.
func (r *Registry) Dispatch(m Message) {
	r.mu.RLock()
	in := r.inboxes[m.UserID]
	r.mu.RUnlock()
	if in != nil {
		in.OnMessageInserted(m)
	}
}

package support

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

// Aggregator is the admin-side projection of all support conversations: a
// partition of every known message by counterpart user, a recent/urgent set,
// and the currently selected conversation. It is a pure in-memory read-through
// over the MessageStore, rebuilt from scratch by LoadAll and updated
// incrementally by OnMessageInserted. It is owned by one admin session and
// never shared.
type Aggregator struct {
	store MessageStore
	pub   Publisher
	log   *zap.SugaredLogger

	mu        sync.RWMutex
	groups    map[string][]Message
	order     []string // first-seen order of conversation keys, never resorted
	recent    map[string]struct{}
	selected  string
	listeners map[int]Listener
	nextID    int

	now func() time.Time
}

func NewAggregator(store MessageStore, pub Publisher, log *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		store:     store,
		pub:       pub,
		log:       log,
		groups:    map[string][]Message{},
		recent:    map[string]struct{}{},
		listeners: map[int]Listener{},
		now:       time.Now,
	}
}

// Subscribe attaches a listener for normalized conversation events. The
// returned func detaches it; callers must detach on view teardown.
func (a *Aggregator) Subscribe(l Listener) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

func (a *Aggregator) emit(ev Event) {
	a.mu.RLock()
	ls := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		ls = append(ls, l)
	}
	a.mu.RUnlock()
	for _, l := range ls {
		l.OnSupportEvent(ev)
	}
}

// LoadAll rebuilds the projection from the store: every message ordered by
// created_at ascending, grouped by user preserving per-group order. On store
// failure the previous state is kept untouched and the error is surfaced.
func (a *Aggregator) LoadAll(ctx context.Context) (map[string][]Message, error) {
	msgs, err := a.store.ListAll(ctx)
	if err != nil {
		a.log.Errorw("load conversations", "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}

	groups := map[string][]Message{}
	order := []string{}
	for _, m := range msgs {
		if _, ok := groups[m.UserID]; !ok {
			order = append(order, m.UserID)
		}
		groups[m.UserID] = append(groups[m.UserID], m)
	}

	a.mu.Lock()
	a.groups = groups
	a.order = order
	a.recent = a.recomputeRecentLocked()
	out := a.snapshotLocked()
	a.mu.Unlock()
	return out, nil
}

// recomputeRecentLocked rescans every group and keeps the keys whose last
// message is end-user-authored and inside the lookback window. O(number of
// conversations) per call, which is fine at operator scale.
func (a *Aggregator) recomputeRecentLocked() map[string]struct{} {
	cutoff := a.now().Add(-RecencyWindow)
	recent := map[string]struct{}{}
	for userID, msgs := range a.groups {
		if len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]
		if !last.IsAdmin && last.CreatedAt.After(cutoff) {
			recent[userID] = struct{}{}
		}
	}
	return recent
}

func (a *Aggregator) snapshotLocked() map[string][]Message {
	out := make(map[string][]Message, len(a.groups))
	for k, v := range a.groups {
		cp := make([]Message, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Conversations returns a copy of the current grouping.
func (a *Aggregator) Conversations() map[string][]Message {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Order returns conversation keys in first-seen order.
func (a *Aggregator) Order() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// RecentSet returns the conversations whose last message is end-user-authored
// and within the lookback window of now.
func (a *Aggregator) RecentSet() map[string]struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recent = a.recomputeRecentLocked()
	out := make(map[string]struct{}, len(a.recent))
	for k := range a.recent {
		out[k] = struct{}{}
	}
	return out
}

// OnMessageInserted is the sole incremental-update path; it must never fall
// back to a full reload. Appends the message to its group (creating the group
// if new), and for end-user messages outside the selected conversation marks
// the group recent and raises a notification event.
func (a *Aggregator) OnMessageInserted(m Message) {
	a.mu.Lock()

	group, ok := a.groups[m.UserID]
	if !ok {
		a.order = append(a.order, m.UserID)
	}
	// The send path appends locally before the stream echoes the insert
	// back; drop the duplicate delivery by id.
	for i := len(group) - 1; i >= 0; i-- {
		if group[i].ID == m.ID {
			a.mu.Unlock()
			return
		}
	}
	a.groups[m.UserID] = append(group, m)

	notify := !m.IsAdmin && a.selected != m.UserID
	if notify {
		a.recent[m.UserID] = struct{}{}
	}
	a.mu.Unlock()

	a.emit(Event{Type: EventMessage, Message: m, UserID: m.UserID})
	if notify {
		label := m.UserEmail
		if label == "" {
			label = "einem Benutzer"
		}
		a.emit(Event{Type: EventNewRequest, UserID: m.UserID, AuthorLabel: label})
	}
}

// Select sets the active conversation. Recency stays purely data-derived:
// selecting does not clear the marker, it only suppresses the new-activity
// notification for messages arriving in this conversation while selected.
func (a *Aggregator) Select(userID string) {
	a.mu.Lock()
	a.selected = userID
	a.mu.Unlock()
}

func (a *Aggregator) Selected() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selected
}

// SendReply inserts an admin-authored message into the conversation keyed by
// userID, or into the selected conversation when userID is empty. The caller's
// content is left intact on failure so the operator can retry without
// retyping.
func (a *Aggregator) SendReply(ctx context.Context, userID, content, adminEmail string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", apperr.ErrValidation)
	}
	if userID == "" {
		userID = a.Selected()
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: no conversation selected", apperr.ErrValidation)
	}

	m := &Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		IsAdmin:   true,
		UserEmail: adminEmail,
	}
	if err := a.store.Insert(ctx, m); err != nil {
		a.log.Errorw("send reply", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
	}

	a.OnMessageInserted(*m)
	if a.pub != nil {
		if err := a.pub.PublishMessageCreated(*m); err != nil {
			a.log.Warnw("publish reply event", "err", err)
		}
	}
	return m, nil
}

// DeleteConversation removes every message of the conversation from the store
// and, only on success, from the local projection; a selected conversation
// loses its selection. Local state is untouched on store failure so the view
// stays consistent with the store.
func (a *Aggregator) DeleteConversation(ctx context.Context, userID string) error {
	if err := a.store.DeleteByUser(ctx, userID); err != nil {
		a.log.Errorw("delete conversation", "user_id", userID, "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrDelete, err)
	}

	a.mu.Lock()
	delete(a.groups, userID)
	delete(a.recent, userID)
	for i, k := range a.order {
		if k == userID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	if a.selected == userID {
		a.selected = ""
	}
	a.mu.Unlock()

	a.emit(Event{Type: EventConversationDeleted, UserID: userID})
	return nil
}

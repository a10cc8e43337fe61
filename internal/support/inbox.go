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

// Inbox is the end-user side of the conversation state machine: the viewer's
// own message sequence plus an unread badge on the chat launcher. Opening the
// panel counts as reading everything.
type Inbox struct {
	userID    string
	userEmail string
	store     MessageStore
	pub       Publisher
	limiter   *SendLimiter
	log       *zap.SugaredLogger

	mu        sync.RWMutex
	messages  []Message
	panelOpen bool
	badge     int
	listeners map[int]Listener
	nextID    int

	now func() time.Time
}

func NewInbox(userID, userEmail string, store MessageStore, pub Publisher, limiter *SendLimiter, log *zap.SugaredLogger) *Inbox {
	return &Inbox{
		userID:    userID,
		userEmail: userEmail,
		store:     store,
		pub:       pub,
		limiter:   limiter,
		log:       log,
		listeners: map[int]Listener{},
		now:       time.Now,
	}
}

func (in *Inbox) UserID() string { return in.userID }

func (in *Inbox) Subscribe(l Listener) func() {
	in.mu.Lock()
	defer in.mu.Unlock()
	id := in.nextID
	in.nextID++
	in.listeners[id] = l
	return func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		delete(in.listeners, id)
	}
}

func (in *Inbox) emit(ev Event) {
	in.mu.RLock()
	ls := make([]Listener, 0, len(in.listeners))
	for _, l := range in.listeners {
		ls = append(ls, l)
	}
	in.mu.RUnlock()
	for _, l := range ls {
		l.OnSupportEvent(ev)
	}
}

// LoadOwn fetches the viewer's conversation ordered ascending. Prior state is
// kept on failure.
func (in *Inbox) LoadOwn(ctx context.Context) ([]Message, error) {
	msgs, err := in.store.ListByUser(ctx, in.userID)
	if err != nil {
		in.log.Errorw("load own messages", "user_id", in.userID, "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrFetch, err)
	}
	in.mu.Lock()
	in.messages = msgs
	out := make([]Message, len(msgs))
	copy(out, msgs)
	in.mu.Unlock()
	return out, nil
}

func (in *Inbox) Messages() []Message {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]Message, len(in.messages))
	copy(out, in.messages)
	return out
}

// UnreadCount is 0 while the panel is open; otherwise the number of
// admin-authored messages inside the lookback window.
func (in *Inbox) UnreadCount() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.panelOpen {
		return 0
	}
	cutoff := in.now().Add(-RecencyWindow)
	n := 0
	for _, m := range in.messages {
		if m.IsAdmin && m.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n
}

// OnMessageInserted appends stream deliveries for this viewer's conversation.
// Admin messages arriving while the panel is closed bump the badge and raise
// a toast event.
func (in *Inbox) OnMessageInserted(m Message) {
	if m.UserID != in.userID {
		return
	}

	in.mu.Lock()
	for i := len(in.messages) - 1; i >= 0; i-- {
		if in.messages[i].ID == m.ID {
			in.mu.Unlock()
			return
		}
	}
	in.messages = append(in.messages, m)
	notify := m.IsAdmin && !in.panelOpen
	if notify {
		in.badge++
	}
	in.mu.Unlock()

	in.emit(Event{Type: EventMessage, Message: m, UserID: m.UserID})
	if notify {
		in.emit(Event{Type: EventNewRequest, UserID: m.UserID, AuthorLabel: "Support"})
	}
}

// OpenPanel resets the badge; "opened" is treated as "read".
func (in *Inbox) OpenPanel() {
	in.mu.Lock()
	in.panelOpen = true
	in.badge = 0
	in.mu.Unlock()
}

func (in *Inbox) ClosePanel() {
	in.mu.Lock()
	in.panelOpen = false
	in.mu.Unlock()
}

func (in *Inbox) PanelOpen() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.panelOpen
}

func (in *Inbox) Badge() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.badge
}

// Send validates and inserts an end-user message. The drafted content stays
// with the caller on failure.
func (in *Inbox) Send(ctx context.Context, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", apperr.ErrValidation)
	}
	if in.limiter != nil {
		if err := in.limiter.Allow(ctx, in.userID); err != nil {
			return nil, err
		}
	}

	m := &Message{
		ID:        uuid.NewString(),
		UserID:    in.userID,
		Content:   content,
		IsAdmin:   false,
		UserEmail: in.userEmail,
	}
	if err := in.store.Insert(ctx, m); err != nil {
		in.log.Errorw("send message", "user_id", in.userID, "err", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrSend, err)
	}

	in.OnMessageInserted(*m)
	if in.pub != nil {
		if err := in.pub.PublishMessageCreated(*m); err != nil {
			in.log.Warnw("publish message event", "err", err)
		}
	}
	return m, nil
}

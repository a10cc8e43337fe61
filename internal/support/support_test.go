package support

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// fakeStore is an in-memory MessageStore for aggregator and inbox tests.
type fakeStore struct {
	mu       sync.Mutex
	messages []Message
	seq      int

	failList   bool
	failInsert bool
	failDelete bool
}

var errStore = errors.New("store unavailable")

func (f *fakeStore) ListAll(ctx context.Context) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errStore
	}
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errStore
	}
	out := []Message{}
	for _, m := range f.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(ctx context.Context, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return errStore
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeStore) DeleteByUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errStore
	}
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

func (f *fakeStore) add(userID string, isAdmin bool, content string, at time.Time) Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	m := Message{
		ID:        fmt.Sprintf("m%d", f.seq),
		UserID:    userID,
		Content:   content,
		IsAdmin:   isAdmin,
		UserEmail: userID,
		CreatedAt: at,
	}
	f.messages = append(f.messages, m)
	return m
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// collector records emitted events for assertions.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) OnSupportEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) byType(t EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []Event{}
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

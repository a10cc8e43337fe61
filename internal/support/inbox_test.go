package support

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

func TestInbox_LoadOwn(t *testing.T) {
	now := time.Now().UTC()

	t.Run("happy path - only the viewer's messages", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "meine Frage", now.Add(-time.Hour))
		store.add("b@y.com", false, "fremde Frage", now.Add(-time.Hour))
		store.add("a@x.com", true, "Antwort", now.Add(-time.Minute))

		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		msgs, err := in.LoadOwn(context.Background())
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "meine Frage", msgs[0].Content)
		assert.Equal(t, "Antwort", msgs[1].Content)
	})

	t.Run("sad path - store failure keeps prior state", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "hi", now.Add(-time.Hour))

		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		_, err := in.LoadOwn(context.Background())
		require.NoError(t, err)

		store.failList = true
		_, err = in.LoadOwn(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrFetch))
		assert.Len(t, in.Messages(), 1)
	})
}

func TestInbox_UnreadCount(t *testing.T) {
	now := time.Now().UTC()

	t.Run("counts recent admin messages while panel closed", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "Frage", now.Add(-2*time.Hour))
		store.add("a@x.com", true, "Antwort 1", now.Add(-time.Hour))
		store.add("a@x.com", true, "Antwort 2", now.Add(-time.Minute))
		store.add("a@x.com", true, "alt", now.Add(-25*time.Hour))

		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		in.now = func() time.Time { return now }
		_, err := in.LoadOwn(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, in.UnreadCount())
	})

	t.Run("open panel suppresses the count", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", true, "Antwort", now.Add(-time.Minute))

		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		in.now = func() time.Time { return now }
		_, err := in.LoadOwn(context.Background())
		require.NoError(t, err)

		in.OpenPanel()
		assert.Equal(t, 0, in.UnreadCount())
		in.ClosePanel()
		assert.Equal(t, 1, in.UnreadCount())
	})

	t.Run("own messages never count", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "Frage", now.Add(-time.Minute))

		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		in.now = func() time.Time { return now }
		_, err := in.LoadOwn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, in.UnreadCount())
	})
}

func TestInbox_OnMessageInserted(t *testing.T) {
	now := time.Now().UTC()

	t.Run("admin message while panel closed bumps badge and toasts", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		col := &collector{}
		in.Subscribe(col)

		in.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", IsAdmin: true, Content: "Hi", CreatedAt: now})

		assert.Equal(t, 1, in.Badge())
		assert.Len(t, col.byType(EventMessage), 1)
		assert.Len(t, col.byType(EventNewRequest), 1)
	})

	t.Run("admin message while panel open stays silent", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		col := &collector{}
		in.Subscribe(col)
		in.OpenPanel()

		in.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", IsAdmin: true, Content: "Hi", CreatedAt: now})

		assert.Equal(t, 0, in.Badge())
		assert.Len(t, col.byType(EventMessage), 1)
		assert.Empty(t, col.byType(EventNewRequest))
	})

	t.Run("foreign conversation messages are ignored", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		in.OnMessageInserted(Message{ID: "m1", UserID: "b@y.com", IsAdmin: true, Content: "Hi", CreatedAt: now})
		assert.Empty(t, in.Messages())
		assert.Equal(t, 0, in.Badge())
	})

	t.Run("duplicate delivery is dropped", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		m := Message{ID: "m1", UserID: "a@x.com", IsAdmin: true, Content: "Hi", CreatedAt: now}
		in.OnMessageInserted(m)
		in.OnMessageInserted(m)
		assert.Len(t, in.Messages(), 1)
		assert.Equal(t, 1, in.Badge())
	})

	t.Run("open panel resets an accumulated badge", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		in.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", IsAdmin: true, CreatedAt: now, Content: "1"})
		in.OnMessageInserted(Message{ID: "m2", UserID: "a@x.com", IsAdmin: true, CreatedAt: now, Content: "2"})
		require.Equal(t, 2, in.Badge())
		in.OpenPanel()
		assert.Equal(t, 0, in.Badge())
	})
}

func TestInbox_Send(t *testing.T) {
	t.Run("happy path - inserts and appends locally", func(t *testing.T) {
		store := &fakeStore{}
		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())

		m, err := in.Send(context.Background(), "  Hallo Support  ")
		require.NoError(t, err)
		assert.False(t, m.IsAdmin)
		assert.Equal(t, "Hallo Support", m.Content)
		assert.Equal(t, "a@x.com", m.UserEmail)
		require.Len(t, store.messages, 1)
		assert.Len(t, in.Messages(), 1)
		assert.Equal(t, 0, in.Badge(), "own sends never bump the badge")
	})

	t.Run("sad path - empty content", func(t *testing.T) {
		in := NewInbox("a@x.com", "a@x.com", &fakeStore{}, nil, nil, testLogger())
		_, err := in.Send(context.Background(), "   ")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("sad path - store failure keeps local state", func(t *testing.T) {
		store := &fakeStore{failInsert: true}
		in := NewInbox("a@x.com", "a@x.com", store, nil, nil, testLogger())
		_, err := in.Send(context.Background(), "Hallo")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrSend))
		assert.Empty(t, in.Messages())
	})
}

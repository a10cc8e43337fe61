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

func TestAggregator_LoadAll(t *testing.T) {
	now := time.Now().UTC()

	t.Run("happy path - groups partition all messages in delivery order", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "hi", now.Add(-3*time.Hour))
		store.add("b@y.com", false, "hello", now.Add(-2*time.Hour))
		store.add("a@x.com", true, "reply", now.Add(-1*time.Hour))

		agg := NewAggregator(store, nil, testLogger())
		groups, err := agg.LoadAll(context.Background())
		require.NoError(t, err)

		require.Len(t, groups, 2)
		require.Len(t, groups["a@x.com"], 2)
		require.Len(t, groups["b@y.com"], 1)
		assert.Equal(t, "hi", groups["a@x.com"][0].Content)
		assert.Equal(t, "reply", groups["a@x.com"][1].Content)
		assert.Equal(t, []string{"a@x.com", "b@y.com"}, agg.Order())

		total := 0
		for _, msgs := range groups {
			total += len(msgs)
		}
		assert.Equal(t, 3, total, "every message in exactly one group")
	})

	t.Run("sad path - store failure keeps prior state", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "hi", now.Add(-time.Hour))

		agg := NewAggregator(store, nil, testLogger())
		_, err := agg.LoadAll(context.Background())
		require.NoError(t, err)

		store.failList = true
		_, err = agg.LoadAll(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrFetch))

		groups := agg.Conversations()
		require.Len(t, groups["a@x.com"], 1, "prior projection untouched")
	})
}

func TestAggregator_RecentSet(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name     string
		isAdmin  bool
		age      time.Duration
		inRecent bool
	}{
		{"user message just inside window", false, 23*time.Hour + 59*time.Minute, true},
		{"user message just outside window", false, 24*time.Hour + time.Minute, false},
		{"admin message recent", true, time.Minute, false},
		{"admin message old", true, 48 * time.Hour, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			store.add("a@x.com", tc.isAdmin, "msg", now.Add(-tc.age))

			agg := NewAggregator(store, nil, testLogger())
			agg.now = func() time.Time { return now }
			_, err := agg.LoadAll(context.Background())
			require.NoError(t, err)

			_, ok := agg.RecentSet()["a@x.com"]
			assert.Equal(t, tc.inRecent, ok)
		})
	}

	t.Run("only the last message counts", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "question", now.Add(-time.Hour))
		store.add("a@x.com", true, "answer", now.Add(-time.Minute))

		agg := NewAggregator(store, nil, testLogger())
		agg.now = func() time.Time { return now }
		_, err := agg.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, agg.RecentSet())
	})
}

func TestAggregator_OnMessageInserted(t *testing.T) {
	now := time.Now().UTC()

	t.Run("creates new group and notifies", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		agg.now = func() time.Time { return now }
		col := &collector{}
		agg.Subscribe(col)

		agg.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", UserEmail: "a@x.com", Content: "Hallo", CreatedAt: now})

		require.Len(t, agg.Conversations()["a@x.com"], 1)
		_, recent := agg.RecentSet()["a@x.com"]
		assert.True(t, recent)

		toasts := col.byType(EventNewRequest)
		require.Len(t, toasts, 1)
		assert.Equal(t, "a@x.com", toasts[0].AuthorLabel)
	})

	t.Run("selected conversation suppresses notification", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		col := &collector{}
		agg.Subscribe(col)

		agg.Select("a@x.com")
		agg.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", Content: "Hallo", CreatedAt: now})

		assert.Empty(t, col.byType(EventNewRequest))
		assert.Len(t, col.byType(EventMessage), 1)
	})

	t.Run("admin-authored message never notifies", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		col := &collector{}
		agg.Subscribe(col)

		agg.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", IsAdmin: true, Content: "Hi", CreatedAt: now})
		assert.Empty(t, col.byType(EventNewRequest))
	})

	t.Run("duplicate delivery is dropped", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		m := Message{ID: "m1", UserID: "a@x.com", Content: "Hallo", CreatedAt: now}
		agg.OnMessageInserted(m)
		agg.OnMessageInserted(m)
		assert.Len(t, agg.Conversations()["a@x.com"], 1)
	})

	t.Run("unsubscribed listener receives nothing", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		col := &collector{}
		unsub := agg.Subscribe(col)
		unsub()
		agg.OnMessageInserted(Message{ID: "m1", UserID: "a@x.com", Content: "Hallo", CreatedAt: now})
		assert.Empty(t, col.events)
	})
}

func TestAggregator_SendReply(t *testing.T) {
	t.Run("happy path - inserts admin message into named conversation", func(t *testing.T) {
		store := &fakeStore{}
		agg := NewAggregator(store, nil, testLogger())

		m, err := agg.SendReply(context.Background(), "a@x.com", "  Hi, wie kann ich helfen?  ", "admin@betclever.de")
		require.NoError(t, err)
		assert.True(t, m.IsAdmin)
		assert.Equal(t, "Hi, wie kann ich helfen?", m.Content)
		assert.Equal(t, "admin@betclever.de", m.UserEmail)
		require.Len(t, store.messages, 1)
		assert.Len(t, agg.Conversations()["a@x.com"], 1)
	})

	t.Run("empty user falls back to selection", func(t *testing.T) {
		store := &fakeStore{}
		agg := NewAggregator(store, nil, testLogger())
		agg.Select("b@y.com")

		m, err := agg.SendReply(context.Background(), "", "Moment bitte", "admin@betclever.de")
		require.NoError(t, err)
		assert.Equal(t, "b@y.com", m.UserID)
	})

	t.Run("sad path - empty content", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		agg.Select("a@x.com")
		_, err := agg.SendReply(context.Background(), "", "   ", "admin@betclever.de")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("sad path - no conversation selected", func(t *testing.T) {
		agg := NewAggregator(&fakeStore{}, nil, testLogger())
		_, err := agg.SendReply(context.Background(), "", "Hallo", "admin@betclever.de")
		assert.True(t, errors.Is(err, apperr.ErrValidation))
	})

	t.Run("sad path - store failure leaves projection untouched", func(t *testing.T) {
		store := &fakeStore{failInsert: true}
		agg := NewAggregator(store, nil, testLogger())
		_, err := agg.SendReply(context.Background(), "a@x.com", "Hallo", "admin@betclever.de")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrSend))
		assert.Empty(t, agg.Conversations())
	})
}

func TestAggregator_DeleteConversation(t *testing.T) {
	now := time.Now().UTC()

	t.Run("happy path - removes group and clears selection", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "hi", now.Add(-time.Hour))
		store.add("b@y.com", false, "hello", now.Add(-time.Hour))

		agg := NewAggregator(store, nil, testLogger())
		_, err := agg.LoadAll(context.Background())
		require.NoError(t, err)
		agg.Select("a@x.com")

		require.NoError(t, agg.DeleteConversation(context.Background(), "a@x.com"))

		groups := agg.Conversations()
		_, ok := groups["a@x.com"]
		assert.False(t, ok)
		assert.Len(t, groups["b@y.com"], 1)
		assert.Equal(t, "", agg.Selected())
		assert.Equal(t, []string{"b@y.com"}, agg.Order())
		require.Len(t, store.messages, 1)
		assert.Equal(t, "b@y.com", store.messages[0].UserID)
	})

	t.Run("sad path - store failure leaves local state unchanged", func(t *testing.T) {
		store := &fakeStore{}
		store.add("a@x.com", false, "hi", now.Add(-time.Hour))

		agg := NewAggregator(store, nil, testLogger())
		_, err := agg.LoadAll(context.Background())
		require.NoError(t, err)
		agg.Select("a@x.com")

		store.failDelete = true
		err = agg.DeleteConversation(context.Background(), "a@x.com")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrDelete))
		assert.Len(t, agg.Conversations()["a@x.com"], 1)
		assert.Equal(t, "a@x.com", agg.Selected())
	})
}

// Full triage flow: user writes, admin loads, replies, selects, and an
// unrelated conversation arrives without disturbing the first.
func TestAggregator_TriageScenario(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{}
	store.add("a@x.com", false, "Hallo", now.Add(-time.Minute))

	agg := NewAggregator(store, nil, testLogger())
	agg.now = func() time.Time { return now }

	groups, err := agg.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, groups["a@x.com"], 1)
	assert.Equal(t, "Hallo", groups["a@x.com"][0].Content)

	_, recent := agg.RecentSet()["a@x.com"]
	require.True(t, recent)

	reply, err := agg.SendReply(context.Background(), "a@x.com", "Hi, wie kann ich helfen?", "admin@betclever.de")
	require.NoError(t, err)

	msgs := agg.Conversations()["a@x.com"]
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hallo", msgs[0].Content)
	assert.Equal(t, reply.ID, msgs[1].ID)

	agg.Select("a@x.com")

	agg.OnMessageInserted(Message{ID: "mb", UserID: "b@y.com", UserEmail: "b@y.com", Content: "Frage", CreatedAt: now})

	groups = agg.Conversations()
	require.Len(t, groups, 2)
	assert.Len(t, groups["a@x.com"], 2, "existing group untouched")
	assert.Len(t, groups["b@y.com"], 1)

	recentSet := agg.RecentSet()
	_, aRecent := recentSet["a@x.com"]
	assert.False(t, aRecent, "a's last message is the admin reply")
	_, bRecent := recentSet["b@y.com"]
	assert.True(t, bRecent)
}

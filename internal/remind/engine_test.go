package remind

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remnd/pkg/logx"
)

type fakeStore struct {
	items      []Reminder
	loadErr    error
	persistErr error
	persisted  [][]Reminder
}

func (s *fakeStore) LoadActive(_ context.Context, _ time.Time) ([]Reminder, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Reminder, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) Persist(_ context.Context, rs []Reminder) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	s.persisted = append(s.persisted, rs)
	for _, r := range rs {
		for i := range s.items {
			if s.items[i].ID == r.ID {
				s.items[i] = r
			}
		}
	}
	return nil
}

type fakeNotifier struct {
	titles []string
	failOn string
}

func (n *fakeNotifier) Notify(_ context.Context, title, _ string) error {
	n.titles = append(n.titles, title)
	if title == n.failOn {
		return errors.New("notifier unavailable")
	}
	return nil
}

func TestEngineRunEndToEnd(t *testing.T) {
	t.Parallel()
	due := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{items: []Reminder{{
		ID:     1,
		Text:   "daily review",
		Note:   "inbox zero",
		DueAt:  due,
		Repeat: Step{Fixed: 24 * time.Hour},
	}}}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, notifier, logx.Nop())

	// Catch-up two days late: the reminder surfaces, gets stamped, and
	// its due time stays put (only completion rolls over).
	now := time.Date(2025, time.January, 3, 10, 0, 0, 0, time.UTC)
	n, err := engine.Run(context.Background(), ModeCatchup, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"daily review"}, notifier.titles)

	require.Len(t, store.persisted, 1)
	got := store.items[0]
	assert.Equal(t, now, got.LastNotifiedAt)
	assert.Equal(t, due, got.DueAt)

	// Completing at the same instant rolls to the next occurrence
	// strictly after the completion instant.
	store.items[0] = got.MarkComplete(now)
	next := time.Date(2025, time.January, 4, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, next, store.items[0].DueAt)

	// A minute check right after completion finds nothing due.
	n, err = engine.Run(context.Background(), ModeMinute, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngineRunMinuteTwiceNotifiesOnce(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{items: []Reminder{
		{ID: 1, Text: "a", DueAt: now.Add(-time.Minute)},
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, notifier, logx.Nop())

	n, err := engine.Run(context.Background(), ModeMinute, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = engine.Run(context.Background(), ModeMinute, now)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"a"}, notifier.titles)
}

func TestEngineNotifyFailureStillPersists(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{items: []Reminder{
		{ID: 1, Text: "flaky", DueAt: now.Add(-time.Minute)},
		{ID: 2, Text: "fine", DueAt: now.Add(-time.Second)},
	}}
	notifier := &fakeNotifier{failOn: "flaky"}
	engine := NewEngine(store, notifier, logx.Nop())

	// Due-ness, not delivery, is the source of truth: the failed
	// delivery is reported but the state change stands.
	n, err := engine.Run(context.Background(), ModeMinute, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, store.persisted, 1)
	for _, r := range store.items {
		assert.Equal(t, now, r.LastNotifiedAt)
	}
}

func TestEngineSkipsMalformedRecords(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{items: []Reminder{
		{ID: 1, Text: "", DueAt: now.Add(-time.Minute)}, // corrupt: no text
		{ID: 2, Text: "ok", DueAt: now.Add(-time.Minute)},
	}}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, notifier, logx.Nop())

	n, err := engine.Run(context.Background(), ModeMinute, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"ok"}, notifier.titles)
}

func TestEngineStoreErrorsAbort(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	boom := errors.New("db locked")
	engine := NewEngine(&fakeStore{loadErr: boom}, &fakeNotifier{}, logx.Nop())
	_, err := engine.Run(context.Background(), ModeMinute, now)
	assert.ErrorIs(t, err, boom)

	store := &fakeStore{
		items:      []Reminder{{ID: 1, Text: "a", DueAt: now.Add(-time.Minute)}},
		persistErr: boom,
	}
	engine = NewEngine(store, &fakeNotifier{}, logx.Nop())
	_, err = engine.Run(context.Background(), ModeMinute, now)
	assert.ErrorIs(t, err, boom)
}

package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRegistry(t *testing.T, ttl time.Duration) (*Registry, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	r := NewRegistry(threeSteps(), Options{Scheduler: sched}, ttl, zaptest.NewLogger(t))
	t.Cleanup(r.Close)
	return r, sched
}

func TestRegistryCreateAndGet(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)

	id, state, err := r.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 0, state.Index)
	assert.Equal(t, 3, state.Total)

	ctrl, err := r.Get(id)
	require.NoError(t, err)
	assert.True(t, ctrl.Next())
	assert.Equal(t, 1, r.Len())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryCompleteDiscardsSession(t *testing.T) {
	r, sched := newTestRegistry(t, time.Minute)

	id, _, err := r.Create()
	require.NoError(t, err)
	ctrl, err := r.Get(id)
	require.NoError(t, err)
	require.True(t, ctrl.Next())

	require.NoError(t, r.Complete(id))
	assert.Zero(t, r.Len())
	_, err = r.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, r.Complete(id), ErrSessionNotFound)

	// the pending reset was cancelled with the session
	assert.True(t, sched.timers[0].stopped)
}

func TestRegistryCompleteFromController(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)

	id, _, err := r.Create()
	require.NoError(t, err)
	ctrl, err := r.Get(id)
	require.NoError(t, err)

	ctrl.Complete()
	assert.Zero(t, r.Len())
}

func TestRegistryDismiss(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)

	id, _, err := r.Create()
	require.NoError(t, err)
	ctrl, err := r.Get(id)
	require.NoError(t, err)

	require.NoError(t, r.Dismiss(id))
	assert.ErrorIs(t, r.Dismiss(id), ErrSessionNotFound)
	assert.False(t, ctrl.Next(), "dismissed controller is closed")
}

func TestRegistrySweepExpiresIdleSessions(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale, _, err := r.Create()
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	fresh, _, err := r.Create()
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, r.Sweep())

	_, err = r.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh)
	assert.NoError(t, err)
}

func TestRegistryRejectsPastLimit(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	r.SetMaxSessions(2)

	first, _, err := r.Create()
	require.NoError(t, err)
	_, _, err = r.Create()
	require.NoError(t, err)

	id, _, err := r.Create()
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Empty(t, id)
	assert.Equal(t, 2, r.Len())

	require.NoError(t, r.Dismiss(first))
	_, _, err = r.Create()
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryLimitSweepsExpiredFirst(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	r.SetMaxSessions(1)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale, _, err := r.Create()
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	fresh, _, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())

	_, err = r.Get(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(fresh)
	assert.NoError(t, err)
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r, _ := newTestRegistry(t, 20*time.Millisecond)
	_, _, err := r.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRegistryStepsIsACopy(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	steps := r.Steps()
	steps[0].Title = "changed"
	assert.Equal(t, "Smart Routing", r.Steps()[0].Title)
}

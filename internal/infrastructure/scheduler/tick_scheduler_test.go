package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/carbure/backend/internal/application/browse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The scheduler must satisfy the coordinator's port
var _ browse.Scheduler = (*TickScheduler)(nil)

func TestTickScheduler_DeferredCallbacksRunOnTick(t *testing.T) {
	s := NewTickScheduler(zap.NewNop())

	var calls []int
	s.Defer(func() { calls = append(calls, 1) })
	s.Defer(func() { calls = append(calls, 2) })

	assert.Empty(t, calls)
	s.Tick()
	assert.Equal(t, []int{1, 2}, calls)
}

func TestTickScheduler_CallbackDeferredDuringTickRunsNextTick(t *testing.T) {
	s := NewTickScheduler(zap.NewNop())

	var ran bool
	s.Defer(func() {
		s.Defer(func() { ran = true })
	})

	s.Tick()
	assert.False(t, ran)
	s.Tick()
	assert.True(t, ran)
}

func TestTickScheduler_PanickingCallbackDoesNotBlockOthers(t *testing.T) {
	s := NewTickScheduler(zap.NewNop())

	var ran bool
	s.Defer(func() { panic("boom") })
	s.Defer(func() { ran = true })

	require.NotPanics(t, s.Tick)
	assert.True(t, ran)
}

func TestTickScheduler_NilCallbackIsIgnored(t *testing.T) {
	s := NewTickScheduler(zap.NewNop())

	s.Defer(nil)
	require.NotPanics(t, s.Tick)
}

func TestTickScheduler_StartAndStop(t *testing.T) {
	s := NewTickScheduler(zap.NewNop(), WithTickInterval(time.Millisecond))
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))

	done := make(chan struct{})
	s.Defer(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred callback never ran")
	}

	require.NoError(t, s.Stop(ctx))
	// Stopping twice is a no-op
	require.NoError(t, s.Stop(ctx))
}

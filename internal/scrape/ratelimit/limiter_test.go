package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireEnforcesMinSpacing(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("siteA", Pacing{
		MinDelay:    30 * time.Millisecond,
		MaxDelay:    60 * time.Millisecond,
		MaxRequests: 10,
	})

	ctx := context.Background()
	var stamps []time.Time
	for i := 0; i < 4; i++ {
		require.NoError(t, l.Acquire(ctx, "siteA"))
		stamps = append(stamps, time.Now())
	}

	for i := 1; i < len(stamps); i++ {
		gap := stamps[i].Sub(stamps[i-1])
		assert.GreaterOrEqual(t, gap, 30*time.Millisecond, "gap %d too small", i)
	}
}

func TestAcquireBudgetExhausted(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("siteA", Pacing{MaxRequests: 3})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(ctx, "siteA"))
	}

	err := l.Acquire(ctx, "siteA")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestBudgetIsFinalForTheSession(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("siteA", Pacing{MaxRequests: 1})

	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx, "siteA"))

	// Nothing short of a new limiter restores a spent budget.
	for i := 0; i < 3; i++ {
		require.ErrorIs(t, l.Acquire(ctx, "siteA"), ErrBudgetExhausted)
	}

	fresh := NewSourceLimiter()
	fresh.Configure("siteA", Pacing{MaxRequests: 1})
	assert.NoError(t, fresh.Acquire(ctx, "siteA"))
}

func TestSourcesDoNotBlockEachOther(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("slow", Pacing{MinDelay: 500 * time.Millisecond, MaxDelay: 500 * time.Millisecond, MaxRequests: 5})
	l.Configure("fast", Pacing{MaxRequests: 5})

	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx, "slow"))

	// "slow" now owes a 500ms delay before its next request. "fast" must not
	// inherit that wait.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Acquire(ctx, "fast")
		_ = l.Acquire(ctx, "fast")
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("acquire for an unrelated source blocked on another source's delay")
	}
}

func TestAcquireUnknownSource(t *testing.T) {
	l := NewSourceLimiter()
	assert.Error(t, l.Acquire(context.Background(), "nope"))
}

func TestAcquireCancelled(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("siteA", Pacing{MinDelay: time.Second, MaxDelay: time.Second, MaxRequests: 5})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, l.Acquire(ctx, "siteA"))

	errCh := make(chan error, 1)
	go func() { errCh <- l.Acquire(ctx, "siteA") }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled acquire did not return")
	}
}

func TestRemaining(t *testing.T) {
	l := NewSourceLimiter()
	l.Configure("siteA", Pacing{MaxRequests: 3})

	assert.Equal(t, 3, l.Remaining("siteA"))
	require.NoError(t, l.Acquire(context.Background(), "siteA"))
	assert.Equal(t, 2, l.Remaining("siteA"))
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// ErrBudgetExhausted is returned once a source has spent its per-session
// request budget. Callers must stop instead of blocking forever.
var ErrBudgetExhausted = errors.New("rate budget exhausted")

// Pacing is one source's request policy.
type Pacing struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MaxRequests int
}

type sourceState struct {
	mu     sync.Mutex
	pacing Pacing
	last   time.Time
	used   int
}

// SourceLimiter enforces per-source pacing: a delay drawn uniformly from
// [MinDelay, MaxDelay] since that source's last request, plus a hard session
// budget. Acquire calls for the same source serialize; different sources
// never block each other.
//
// A limiter instance is one scraping session. The budget counters only ever
// count up, so an exhausted source stays exhausted for the limiter's
// lifetime; start the next run with a fresh limiter.
type SourceLimiter struct {
	mu      sync.Mutex
	sources map[string]*sourceState
	rng     *rand.Rand
	rngMu   sync.Mutex
}

func NewSourceLimiter() *SourceLimiter {
	return &SourceLimiter{
		sources: make(map[string]*sourceState),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Configure registers or replaces a source's pacing. Counters for that
// source are reset.
func (l *SourceLimiter) Configure(source string, p Pacing) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sources[source] = &sourceState{pacing: p}
}

func (l *SourceLimiter) stateFor(source string) (*sourceState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.sources[source]
	if !ok {
		return nil, fmt.Errorf("rate limiter: unknown source %q", source)
	}
	return st, nil
}

// Acquire blocks until the source is allowed another request, then charges
// the budget. Fails with ErrBudgetExhausted when the session cap is reached
// and with ctx.Err() on cancellation. The per-source lock is held across the
// wait so same-source callers observe strictly sequential spacing.
func (l *SourceLimiter) Acquire(ctx context.Context, source string) error {
	st, err := l.stateFor(source)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.pacing.MaxRequests > 0 && st.used >= st.pacing.MaxRequests {
		return fmt.Errorf("source %s: %w", source, ErrBudgetExhausted)
	}

	if !st.last.IsZero() {
		delay := l.jitter(st.pacing.MinDelay, st.pacing.MaxDelay)
		wait := time.Until(st.last.Add(delay))
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}

	st.last = time.Now()
	st.used++
	return nil
}

// Remaining reports how much of the source's budget is left, for outcome
// metadata. Unknown sources report zero.
func (l *SourceLimiter) Remaining(source string) int {
	st, err := l.stateFor(source)
	if err != nil {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.pacing.MaxRequests <= 0 {
		return 0
	}
	n := st.pacing.MaxRequests - st.used
	if n < 0 {
		n = 0
	}
	return n
}

// jitter draws uniformly from [min, max]. The spread only needs to break up
// lock-step request patterns; it is not cryptographic.
func (l *SourceLimiter) jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return min + time.Duration(l.rng.Int63n(int64(max-min)+1))
}

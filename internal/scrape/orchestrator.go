// Package scrape drives one search run: it fans out to the enabled source
// adapters under rate-limit policy, filters what they return, and hands the
// per-source outcomes to the aggregator.
package scrape

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobscout-engine/internal/aggregate"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/filter"
	"jobscout-engine/internal/scrape/browser"
	"jobscout-engine/internal/scrape/ratelimit"
	"jobscout-engine/internal/scrape/types"
)

// State tracks where a run is in its lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateDispatching State = "dispatching"
	StateCollecting  State = "collecting"
	StateDone        State = "done"
)

// Options carries the collaborators the orchestrator hands to adapters.
type Options struct {
	Browser       browser.Pool
	EmailPassword func() (string, error)

	// OnOutcome, when set, is called as each source finishes. Serve mode
	// uses it to stream progress events.
	OnOutcome func(domain.ScrapeOutcome)
}

type Orchestrator struct {
	cfg   config.Config
	opts  Options
	hosts *ratelimit.HostLimiter

	// runMu serializes Run. Overlapping runs would interleave lifecycle
	// state and rate-limit sessions.
	runMu sync.Mutex

	mu    sync.Mutex
	state State
}

// New validates the configuration and builds an orchestrator. Invalid
// configuration is fatal here, before anything is dispatched.
func New(cfg config.Config, opts Options) (*Orchestrator, error) {
	cfg, v := config.NormalizeAndValidate(cfg)
	if !v.OK() {
		return nil, v
	}
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	return &Orchestrator{
		cfg:   cfg,
		opts:  opts,
		hosts: ratelimit.NewHostLimiter(1, 2),
		state: StateIdle,
	}, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes one search across all enabled sources and returns the merged
// result. Runs serialize on the orchestrator; each run gets its own limiter
// session, so no rate-limit state survives between runs and a source's hard
// request budget can never be bypassed by a second run resetting counters
// mid-flight. The host limiter is the one deliberate exception: per-host
// politeness is process-wide.
func (o *Orchestrator) Run(ctx context.Context, q domain.SearchQuery) (domain.AggregatedResult, error) {
	sources, err := o.selectSources(q)
	if err != nil {
		return domain.AggregatedResult{}, err
	}

	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.setState(StateDispatching)
	defer o.setState(StateDone)
	start := time.Now()
	runID := uuid.NewString()

	limiter := ratelimit.NewSourceLimiter()
	for _, name := range sources {
		sc := o.cfg.Source(name)
		limiter.Configure(name, ratelimit.Pacing{
			MinDelay:    sc.MinDelay(),
			MaxDelay:    sc.MaxDelay(),
			MaxRequests: sc.MaxRequests,
		})
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout())
	defer cancel()

	deps := types.Deps{
		Limiter:       limiter,
		Hosts:         o.hosts,
		Browser:       o.opts.Browser,
		EmailPassword: o.opts.EmailPassword,
	}

	outcomes := make([]domain.ScrapeOutcome, len(sources))
	var g errgroup.Group
	if n := o.cfg.Run.MaxConcurrentSources; n > 0 {
		g.SetLimit(n)
	}
	for i, name := range sources {
		i, name := i, name
		g.Go(func() error {
			out := o.runSource(runCtx, deps, name, q)
			outcomes[i] = out
			if o.opts.OnOutcome != nil {
				o.opts.OnOutcome(out)
			}
			// Best-effort: a failing source never cancels its siblings.
			return nil
		})
	}
	_ = g.Wait()
	o.setState(StateCollecting)

	res := aggregate.Merge(runID, q, outcomes, time.Since(start))
	log.Printf("[run %s] sources=%d listings=%d raw=%d filtered=%d in %s",
		runID, len(sources), len(res.Listings), res.RawCount, res.FilteredOut, res.Duration.Round(time.Millisecond))
	return res, nil
}

// selectSources resolves the query's source set against the configuration
// and registry. An empty result is a configuration error.
func (o *Orchestrator) selectSources(q domain.SearchQuery) ([]string, error) {
	requested := q.Sources
	if len(requested) == 0 {
		requested = o.cfg.EnabledSources()
	}

	var v config.Validation
	var out []string
	for _, name := range requested {
		sc, ok := o.cfg.Sources[name]
		if !ok {
			v.Errors = append(v.Errors, "unknown source: "+name)
			continue
		}
		if !sc.Enabled {
			continue
		}
		if _, ok := types.Lookup(name); !ok {
			v.Errors = append(v.Errors, "no adapter registered for source: "+name)
			continue
		}
		out = append(out, name)
	}
	if len(v.Errors) > 0 {
		return nil, v
	}
	if len(out) == 0 {
		v.Errors = append(v.Errors, "no sources enabled")
		return nil, v
	}
	sort.Strings(out)
	return out, nil
}

// runSource executes one adapter end to end and classifies the result. All
// failures are source-local; they are recorded, never propagated.
func (o *Orchestrator) runSource(ctx context.Context, deps types.Deps, name string, q domain.SearchQuery) domain.ScrapeOutcome {
	out := domain.ScrapeOutcome{Source: name, Status: domain.StatusOK}
	sc := o.cfg.Source(name)

	factory, _ := types.Lookup(name)
	adapter, err := factory(deps, o.cfg, sc)
	if err != nil {
		log.Printf("[%s] construct: %v", name, err)
		out.Status = domain.StatusError
		out.Err = err.Error()
		return out
	}

	raw, fetchErr := o.fetchWithRetry(ctx, adapter, name, q)
	out.RawCount = len(raw)

	strict := q.Strict || o.cfg.Search.Strict
	f := filter.New(o.cfg, sc)
	for i, l := range raw {
		ok, score := f.Accept(l, strict)
		if !ok {
			out.FilteredOut++
			continue
		}
		out.Listings = append(out.Listings, domain.ScoredListing{
			JobListing: l,
			Quality:    score,
			Priority:   sc.Priority,
			Discovered: i,
		})
	}

	if fetchErr != nil {
		out.Err = fetchErr.Error()
		switch {
		case errors.Is(fetchErr, types.ErrBlocked):
			out.Status = domain.StatusBlocked
		case errors.Is(fetchErr, context.DeadlineExceeded), errors.Is(fetchErr, context.Canceled):
			// Cancelled mid-run; keep whatever was accepted before the cutoff.
			out.Status = domain.StatusPartial
		case errors.Is(fetchErr, ratelimit.ErrBudgetExhausted):
			// The source spent its whole session budget; what it returned
			// is complete as far as this run is allowed to go.
			out.Status = domain.StatusPartial
		default:
			out.Status = domain.StatusError
		}
		log.Printf("[%s] status=%s err=%v accepted=%d", name, out.Status, fetchErr, len(out.Listings))
	}
	return out
}

// fetchWithRetry retries transient network failures a bounded number of
// times with backoff. Blocked is never retried within a run; hammering a
// source that just flagged us only raises the detection risk.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, adapter types.Adapter, name string, q domain.SearchQuery) ([]domain.JobListing, error) {
	var raw []domain.JobListing
	var err error

	attempts := o.cfg.Run.RetryMax + 1
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err = adapter.FetchRaw(ctx, q)
		if err == nil {
			return raw, nil
		}

		var netErr *types.NetworkError
		if !errors.As(err, &netErr) || attempt == attempts {
			return raw, err
		}

		backoff := o.cfg.RetryBackoff() * time.Duration(attempt)
		log.Printf("[%s] network error (attempt %d/%d), retrying in %s: %v",
			name, attempt, attempts, backoff, err)
		select {
		case <-ctx.Done():
			return raw, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return raw, err
}

package scrape

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/ratelimit"
	"jobscout-engine/internal/scrape/types"
)

// fakeAdapter is a canned in-memory source for orchestrator tests.
type fakeAdapter struct {
	name     string
	listings []domain.JobListing
	err      error
	calls    *atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchRaw(ctx context.Context, _ domain.SearchQuery) ([]domain.JobListing, error) {
	if f.calls != nil {
		f.calls.Add(1)
	}
	return f.listings, f.err
}

var fakes = map[string]*fakeAdapter{}

func init() {
	// Fake sources shared by every test in this file. The registry is
	// process-global, so each name registers exactly once.
	for _, name := range []string{"fakealpha", "fakebeta", "fakegamma"} {
		name := name
		types.Register(name, func(types.Deps, config.Config, config.SourceConfig) (types.Adapter, error) {
			if a, ok := fakeOverrides[name]; ok {
				return a, nil
			}
			af, ok := fakes[name]
			if !ok {
				return nil, errors.New("no fake wired for " + name)
			}
			return af, nil
		})
	}
	types.Register("fakebudget", func(d types.Deps, _ config.Config, _ config.SourceConfig) (types.Adapter, error) {
		return &budgetAdapter{limiter: d.Limiter}, nil
	})
}

// budgetAdapter keeps requesting limiter slots until the session budget runs
// out, so tests can observe exactly how many requests a run was allowed.
type budgetAdapter struct {
	limiter *ratelimit.SourceLimiter
}

var budgetAcquires atomic.Int32

func (b *budgetAdapter) Name() string { return "fakebudget" }

func (b *budgetAdapter) FetchRaw(ctx context.Context, _ domain.SearchQuery) ([]domain.JobListing, error) {
	var out []domain.JobListing
	for len(out) < 10 {
		if err := b.limiter.Acquire(ctx, "fakebudget"); err != nil {
			return out, err
		}
		n := budgetAcquires.Add(1)
		out = append(out, rawListing(int(n)))
	}
	return out, errors.New("budget never ran out")
}

func rawListing(i int) domain.JobListing {
	return domain.JobListing{
		Title:       fmt.Sprintf("LLM Engineer %d", i),
		Company:     "Acme",
		Location:    "Remote",
		Description: "Work on large language model systems in Python with PyTorch and LangChain.",
		URL:         fmt.Sprintf("https://example.com/jobs/%d", i),
		JobType:     domain.JobTypeFullTime,
		RemoteType:  domain.RemoteTypeRemote,
	}
}

func junkListing(i int) domain.JobListing {
	return domain.JobListing{
		Title:       fmt.Sprintf("Door to door sales %d", i),
		Company:     "Initech",
		Description: "Commission only role.",
		URL:         fmt.Sprintf("https://example.com/junk/%d", i),
	}
}

func testConfig(sources ...string) config.Config {
	cfg := config.Default()
	cfg.Sources = map[string]config.SourceConfig{}
	for i, name := range sources {
		cfg.Sources[name] = config.SourceConfig{
			Enabled:     true,
			Priority:    i + 1,
			MinDelayMS:  0,
			MaxDelayMS:  1,
			MaxRequests: 100,
			MaxPages:    1,
			MinQuality:  0.3,
		}
	}
	cfg.Run.TimeoutSeconds = 5
	cfg.Run.RetryMax = 1
	cfg.Run.RetryBackoffSeconds = 0
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	for name, sc := range cfg.Sources {
		sc.Enabled = false
		cfg.Sources[name] = sc
	}
	_, err := New(cfg, Options{})
	require.Error(t, err)
	var v config.Validation
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Error(), "no sources enabled")
}

func TestRunMergesResultsAcrossSources(t *testing.T) {
	// Source A: 10 raw, 6 good. Source B: 5 raw, 3 good, one of which is
	// the same URL as an A listing.
	var aRaw []domain.JobListing
	for i := 0; i < 6; i++ {
		aRaw = append(aRaw, rawListing(i))
	}
	for i := 0; i < 4; i++ {
		aRaw = append(aRaw, junkListing(i))
	}
	bRaw := []domain.JobListing{
		rawListing(0), // duplicate of A's first listing by URL
		rawListing(100),
		rawListing(101),
		junkListing(10),
		junkListing(11),
	}
	fakes["fakealpha"] = &fakeAdapter{name: "fakealpha", listings: aRaw}
	fakes["fakebeta"] = &fakeAdapter{name: "fakebeta", listings: bRaw}

	o, err := New(testConfig("fakealpha", "fakebeta"), Options{})
	require.NoError(t, err)

	res, err := o.Run(context.Background(), domain.SearchQuery{Text: "LLM engineer"})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 8)
	assert.Equal(t, 15, res.RawCount)
	assert.Equal(t, 7, res.FilteredOut)
	assert.Equal(t, StateDone, o.State())
	assert.NotEmpty(t, res.RunID)
}

func TestBlockedSourceNeverDropsSiblingData(t *testing.T) {
	fakes["fakealpha"] = &fakeAdapter{name: "fakealpha", err: types.ErrBlocked}
	fakes["fakebeta"] = &fakeAdapter{name: "fakebeta", listings: []domain.JobListing{rawListing(1), rawListing(2)}}

	o, err := New(testConfig("fakealpha", "fakebeta"), Options{})
	require.NoError(t, err)

	res, err := o.Run(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)

	assert.Len(t, res.Listings, 2)
	assert.Equal(t, []string{"fakealpha"}, res.FailedSources())
	for _, o := range res.Outcomes {
		if o.Source == "fakealpha" {
			assert.Equal(t, domain.StatusBlocked, o.Status)
		}
	}
}

func TestBlockedIsNeverRetried(t *testing.T) {
	var calls atomic.Int32
	fakes["fakealpha"] = &fakeAdapter{name: "fakealpha", err: types.ErrBlocked, calls: &calls}

	o, err := New(testConfig("fakealpha"), Options{})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNetworkErrorIsRetriedThenTerminal(t *testing.T) {
	var calls atomic.Int32
	fakes["fakealpha"] = &fakeAdapter{
		name:  "fakealpha",
		err:   &types.NetworkError{Op: "fetch", Err: errors.New("connection reset")},
		calls: &calls,
	}

	cfg := testConfig("fakealpha")
	cfg.Run.RetryMax = 2
	o, err := New(cfg, Options{})
	require.NoError(t, err)

	res, err := o.Run(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, domain.StatusError, res.Outcomes[0].Status)
	assert.Contains(t, res.Outcomes[0].Err, "connection reset")
}

func TestUnknownRequestedSourceIsConfigurationError(t *testing.T) {
	o, err := New(testConfig("fakealpha"), Options{})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), domain.SearchQuery{Sources: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestOnOutcomeCallbackFires(t *testing.T) {
	fakes["fakealpha"] = &fakeAdapter{name: "fakealpha", listings: []domain.JobListing{rawListing(1)}}

	var got []string
	o, err := New(testConfig("fakealpha"), Options{
		OnOutcome: func(out domain.ScrapeOutcome) { got = append(got, out.Source) },
	})
	require.NoError(t, err)

	_, err = o.Run(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fakealpha"}, got)
}

func TestRunTimeoutYieldsPartialStatus(t *testing.T) {
	fakes["fakegamma"] = &fakeAdapter{name: "fakegamma"}
	slow := &slowAdapter{partial: []domain.JobListing{rawListing(7)}}
	factoryOverride(t, "fakegamma", slow)

	cfg := testConfig("fakegamma")
	cfg.Run.TimeoutSeconds = 1
	o, err := New(cfg, Options{})
	require.NoError(t, err)

	start := time.Now()
	res, err := o.Run(context.Background(), domain.SearchQuery{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, domain.StatusPartial, res.Outcomes[0].Status)
	assert.Len(t, res.Listings, 1, "work accepted before the cutoff survives")
}

func TestOverlappingRunsEachGetAFreshBudget(t *testing.T) {
	cfg := testConfig("fakebudget")
	sc := cfg.Sources["fakebudget"]
	sc.MaxRequests = 3
	cfg.Sources["fakebudget"] = sc

	o, err := New(cfg, Options{})
	require.NoError(t, err)

	budgetAcquires.Store(0)
	results := make([]domain.AggregatedResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = o.Run(context.Background(), domain.SearchQuery{Text: "LLM engineer"})
		}()
	}
	wg.Wait()

	// Two runs racing on one orchestrator must not share or reset each
	// other's session counters: exactly MaxRequests per run, no more.
	assert.Equal(t, int32(6), budgetAcquires.Load())
	for i := range results {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Outcomes, 1)
		out := results[i].Outcomes[0]
		assert.Equal(t, 3, out.RawCount)
		assert.Equal(t, domain.StatusPartial, out.Status, "an exhausted budget ends the run as partial")
	}
}

// slowAdapter blocks until cancelled, then returns what it had.
type slowAdapter struct {
	partial []domain.JobListing
}

func (s *slowAdapter) Name() string { return "fakegamma" }

func (s *slowAdapter) FetchRaw(ctx context.Context, _ domain.SearchQuery) ([]domain.JobListing, error) {
	<-ctx.Done()
	return s.partial, ctx.Err()
}

// factoryOverride points a fake source at a different adapter for one test.
func factoryOverride(t *testing.T, name string, a types.Adapter) {
	t.Helper()
	prev := fakes[name]
	fakes[name] = &fakeAdapter{name: name}
	fakeOverrides[name] = a
	t.Cleanup(func() {
		fakes[name] = prev
		delete(fakeOverrides, name)
	})
}

var fakeOverrides = map[string]types.Adapter{}

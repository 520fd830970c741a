package types

import (
	"context"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/browser"
	"jobscout-engine/internal/scrape/ratelimit"
)

// Adapter is the per-site scraping capability. Implementations build the
// site's query URLs, paginate, and extract fields; they call the limiter
// before every network-causing action and fail fast with ErrBlocked when the
// site denies automated access. An adapter knows nothing about filtering or
// other sources.
type Adapter interface {
	Name() string

	// FetchRaw produces the site's raw listings for the query. Partial
	// results may be returned alongside an error; the orchestrator keeps
	// whatever was produced before the failure.
	FetchRaw(ctx context.Context, q domain.SearchQuery) ([]domain.JobListing, error)
}

// Deps carries the shared collaborators adapters may need. Every field is
// optional; each adapter takes what applies to it.
type Deps struct {
	Limiter *ratelimit.SourceLimiter
	Hosts   *ratelimit.HostLimiter
	Browser browser.Pool

	// Email credentials resolver for the email-alerts adapter.
	EmailPassword func() (string, error)
}

// Factory builds one adapter from its source config.
type Factory func(deps Deps, cfg config.Config, sc config.SourceConfig) (Adapter, error)

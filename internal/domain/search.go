package domain

import "time"

// SearchQuery describes one search invocation. Read-only once built.
type SearchQuery struct {
	Text     string
	Location string

	// MaxPages caps pagination per source; 0 means each source's configured
	// default.
	MaxPages int

	// Seniority is an optional hint ("junior", "mid", "senior", "staff").
	Seniority string

	// Sources limits the run to these source names. Empty means every
	// enabled source.
	Sources []string

	Strict bool
}

type SourceStatus string

const (
	StatusOK      SourceStatus = "ok"
	StatusPartial SourceStatus = "partial"
	StatusBlocked SourceStatus = "blocked"
	StatusError   SourceStatus = "error"
)

// ScoredListing is a listing annotated with its quality score and the
// bookkeeping the aggregator needs for deterministic ranking.
type ScoredListing struct {
	JobListing

	// Quality is the filter's score in [0,1].
	Quality float64

	// Priority is the origin source's configured priority (lower = preferred).
	Priority int

	// Discovered is the listing's index within its source's raw sequence.
	Discovered int
}

// ScrapeOutcome is the per-source result of one orchestrated run.
type ScrapeOutcome struct {
	Source      string
	Listings    []ScoredListing
	RawCount    int
	FilteredOut int
	Status      SourceStatus
	Err         string
}

// AggregatedResult is the externally observable output of one search:
// deduplicated, ranked listings plus per-source breakdown.
type AggregatedResult struct {
	RunID string
	Query SearchQuery

	Listings []ScoredListing

	RawCount    int
	FilteredOut int

	Outcomes []ScrapeOutcome
	Duration time.Duration
}

// SucceededSources lists sources that produced a usable outcome.
func (r AggregatedResult) SucceededSources() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == StatusOK || o.Status == StatusPartial {
			out = append(out, o.Source)
		}
	}
	return out
}

// FailedSources lists sources that were blocked or errored.
func (r AggregatedResult) FailedSources() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Status == StatusBlocked || o.Status == StatusError {
			out = append(out, o.Source)
		}
	}
	return out
}

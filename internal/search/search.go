// Package search is the engine's public face: it turns query text,
// categories, or a full sweep into orchestrated runs and one merged result.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"jobscout-engine/internal/aggregate"
	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape"
)

type Service struct {
	cfg  config.Config
	orch *scrape.Orchestrator
}

func New(cfg config.Config, opts scrape.Options) (*Service, error) {
	orch, err := scrape.New(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, orch: orch}, nil
}

// Search runs one query across the enabled sources. Zero-valued query
// fields fall back to the configured defaults.
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) (domain.AggregatedResult, error) {
	if q.Location == "" {
		q.Location = s.cfg.Search.Location
	}
	if q.MaxPages == 0 {
		q.MaxPages = s.cfg.Search.DefaultMaxPages
	}
	// The seniority hint rides along in the query text; boards have no
	// structured field for it.
	if q.Seniority != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(q.Seniority)) {
		q.Text = q.Seniority + " " + q.Text
	}
	return s.orch.Run(ctx, q)
}

// SearchCategory expands a named category into its queries, runs each, and
// merges the results. maxJobsPerQuery <= 0 means no cap.
func (s *Service) SearchCategory(ctx context.Context, name string, maxJobsPerQuery int) (domain.AggregatedResult, error) {
	cat, ok := s.cfg.CategoryByName(name)
	if !ok {
		return domain.AggregatedResult{}, fmt.Errorf("unknown category %q (have %s)", name, s.categoryNames())
	}
	return s.runQueries(ctx, cat.Queries, maxJobsPerQuery, domain.SearchQuery{})
}

// SearchComprehensive sweeps every category, one run per query, and merges
// everything into a single deduplicated result. maxJobsPerCategory caps
// what each category contributes to the merged result, after that
// category's own queries have been merged and ranked; <= 0 means no cap.
func (s *Service) SearchComprehensive(ctx context.Context, maxJobsPerCategory int) (domain.AggregatedResult, error) {
	var results []domain.AggregatedResult
	for _, cat := range s.cfg.Categories {
		res, err := s.runQueries(ctx, cat.Queries, 0, domain.SearchQuery{})
		if err != nil {
			return domain.AggregatedResult{}, fmt.Errorf("category %s: %w", cat.Name, err)
		}
		results = append(results, res)
	}
	return combine(domain.SearchQuery{Text: "comprehensive"}, results, maxJobsPerCategory), nil
}

// RandomQuery picks one query from the configured categories.
func (s *Service) RandomQuery() string {
	all := s.cfg.AllQueries()
	if len(all) == 0 {
		return ""
	}
	return all[rand.Intn(len(all))]
}

func (s *Service) Categories() []config.Category { return s.cfg.Categories }

func (s *Service) runQueries(ctx context.Context, queries []string, cap int, base domain.SearchQuery) (domain.AggregatedResult, error) {
	var results []domain.AggregatedResult
	for _, text := range queries {
		q := base
		q.Text = text
		res, err := s.Search(ctx, q)
		if err != nil {
			return domain.AggregatedResult{}, err
		}
		results = append(results, res)
	}
	label := fmt.Sprintf("%d queries", len(queries))
	if len(queries) == 1 {
		label = queries[0]
	}
	return combine(domain.SearchQuery{Text: label}, results, cap), nil
}

// combine folds several run results into one, deduplicating across runs.
// perRunCap truncates each run's ranked listings before the merge.
func combine(q domain.SearchQuery, results []domain.AggregatedResult, perRunCap int) domain.AggregatedResult {
	if len(results) == 1 && perRunCap <= 0 {
		return results[0]
	}

	var outcomes []domain.ScrapeOutcome
	var total time.Duration
	runID := ""
	for _, res := range results {
		if runID == "" {
			runID = res.RunID
		}
		total += res.Duration
		listings := res.Listings
		if perRunCap > 0 && len(listings) > perRunCap {
			listings = listings[:perRunCap]
		}
		outcomes = append(outcomes, domain.ScrapeOutcome{
			Source:   "run:" + res.RunID,
			Listings: listings,
			RawCount: res.RawCount,
			Status:   runStatus(res),
		})
	}

	merged := aggregate.Merge(runID, q, outcomes, total)
	// Per-source breakdown should surface the real sources, not the
	// synthetic per-run grouping used for the merge.
	merged.Outcomes = nil
	for _, res := range results {
		merged.Outcomes = append(merged.Outcomes, res.Outcomes...)
	}
	return merged
}

func runStatus(res domain.AggregatedResult) domain.SourceStatus {
	if len(res.FailedSources()) == 0 {
		return domain.StatusOK
	}
	if len(res.SucceededSources()) == 0 {
		return domain.StatusError
	}
	return domain.StatusPartial
}

func (s *Service) categoryNames() string {
	names := ""
	for i, cat := range s.cfg.Categories {
		if i > 0 {
			names += ", "
		}
		names += cat.Name
	}
	return names
}

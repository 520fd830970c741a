// Package remoteok pulls from RemoteOK's public JSON API. No browser needed;
// the API is rate-limit friendly and every listing is remote by definition.
package remoteok

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/ratelimit"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const (
	sourceName = "remoteok"
	apiURL     = "https://remoteok.com/api"
)

func init() {
	types.Register(sourceName, New)
}

type Scraper struct {
	sc      config.SourceConfig
	tech    []string
	limiter *ratelimit.SourceLimiter
	hosts   *ratelimit.HostLimiter
	hc      *http.Client
}

func New(deps types.Deps, cfg config.Config, sc config.SourceConfig) (types.Adapter, error) {
	if deps.Limiter == nil {
		return nil, fmt.Errorf("%s: rate limiter is required", sourceName)
	}
	return &Scraper{
		sc:      sc,
		tech:    cfg.Filters.TechKeywords,
		limiter: deps.Limiter,
		hosts:   deps.Hosts,
		hc:      &http.Client{Timeout: 20 * time.Second},
	}, nil
}

func (s *Scraper) Name() string { return sourceName }

type rokPosting struct {
	ID          json.Number `json:"id"`
	Slug        string      `json:"slug"`
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Location    string      `json:"location"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	SalaryMin   int         `json:"salary_min"`
	SalaryMax   int         `json:"salary_max"`
	Epoch       int64       `json:"epoch"`
}

func (s *Scraper) FetchRaw(ctx context.Context, q domain.SearchQuery) ([]domain.JobListing, error) {
	if err := s.limiter.Acquire(ctx, sourceName); err != nil {
		return nil, err
	}
	if s.hosts != nil {
		if err := s.hosts.WaitURL(ctx, apiURL); err != nil {
			return nil, err
		}
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	req.Header.Set("User-Agent", "jobscout/1.0 (+local)")
	req.Header.Set("Accept", "application/json")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, &types.NetworkError{Op: "get api", Err: err}
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests {
		return nil, types.ErrBlocked
	}
	if res.StatusCode >= 400 {
		return nil, &types.NetworkError{Op: "get api", Err: fmt.Errorf("status %d", res.StatusCode)}
	}

	var postings []rokPosting
	if err := json.NewDecoder(res.Body).Decode(&postings); err != nil {
		return nil, &types.ParseError{Source: sourceName, Detail: fmt.Sprintf("decode api response: %v", err)}
	}

	out := s.convert(postings, q)
	log.Printf("[%s] fetched=%d (of %d api rows)", sourceName, len(out), len(postings))
	return out, nil
}

func (s *Scraper) convert(postings []rokPosting, q domain.SearchQuery) []domain.JobListing {
	terms := queryTerms(q.Text)

	var out []domain.JobListing
	for _, p := range postings {
		// The first API element is a legal notice with no position.
		if strings.TrimSpace(p.Position) == "" || strings.TrimSpace(p.URL) == "" {
			continue
		}

		blob := strings.ToLower(p.Position + " " + p.Description + " " + strings.Join(p.Tags, " "))
		if !matchesAny(blob, terms) {
			continue
		}

		var lo, hi *int
		if p.SalaryMin > 0 {
			v := p.SalaryMin
			lo = &v
		}
		if p.SalaryMax > 0 && p.SalaryMax >= p.SalaryMin {
			v := p.SalaryMax
			hi = &v
		}

		var posted time.Time
		if p.Epoch > 0 {
			posted = time.Unix(p.Epoch, 0).UTC()
		}

		location := util.NormalizeLocation(p.Location)
		if location == "" {
			location = "Remote"
		}

		out = append(out, domain.JobListing{
			Title:       util.CleanText(p.Position),
			Company:     util.CleanText(p.Company),
			Location:    location,
			Description: util.CleanText(p.Description),
			URL:         p.URL,
			SalaryMin:   lo,
			SalaryMax:   hi,
			JobType:     util.InferJobType(p.Position + " " + p.Description),
			RemoteType:  domain.RemoteTypeRemote,
			Source:      sourceName,
			Skills:      util.ExtractSkills(blob, s.tech),
			PostedAt:    posted,
		})
	}
	return out
}

// queryTerms splits the query into lowercase terms, dropping single-letter
// noise. "LLM engineer" matches postings containing either term.
func queryTerms(text string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func matchesAny(blob string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		if strings.Contains(blob, t) {
			return true
		}
	}
	return false
}

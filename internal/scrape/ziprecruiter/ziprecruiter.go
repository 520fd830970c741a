package ziprecruiter

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/browser"
	"jobscout-engine/internal/scrape/ratelimit"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const (
	sourceName = "ziprecruiter"
	baseURL    = "https://www.ziprecruiter.com"
)

func init() {
	types.Register(sourceName, New)
}

type Scraper struct {
	sc       config.SourceConfig
	tech     []string
	limiter  *ratelimit.SourceLimiter
	pool     browser.Pool
	maxPages int
}

func New(deps types.Deps, cfg config.Config, sc config.SourceConfig) (types.Adapter, error) {
	if deps.Browser == nil {
		return nil, fmt.Errorf("%s: browser pool is required", sourceName)
	}
	if deps.Limiter == nil {
		return nil, fmt.Errorf("%s: rate limiter is required", sourceName)
	}
	return &Scraper{
		sc:       sc,
		tech:     cfg.Filters.TechKeywords,
		limiter:  deps.Limiter,
		pool:     deps.Browser,
		maxPages: sc.MaxPages,
	}, nil
}

func (s *Scraper) Name() string { return sourceName }

func (s *Scraper) FetchRaw(ctx context.Context, q domain.SearchQuery) ([]domain.JobListing, error) {
	maxPages := s.maxPages
	if q.MaxPages > 0 && q.MaxPages < maxPages {
		maxPages = q.MaxPages
	}

	var out []domain.JobListing
	err := s.pool.WithSession(ctx, func(sess browser.Session) error {
		for page := 1; page <= maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.limiter.Acquire(ctx, sourceName); err != nil {
				return err
			}

			target := s.searchURL(q, page)
			if err := sess.Navigate(ctx, target); err != nil {
				return &types.NetworkError{Op: "navigate search page", Err: err}
			}

			html, err := sess.Content()
			if err != nil {
				return &types.NetworkError{Op: "read page content", Err: err}
			}
			if util.LooksBlocked(sess.Title(), html) {
				return types.ErrBlocked
			}

			jobs, err := s.parsePage(html)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				if page == 1 && !noResultsPage(html) {
					// Navigation "succeeded" but the result list is gone:
					// treat as a soft block rather than trusting an empty page.
					return types.ErrBlocked
				}
				return nil
			}
			out = append(out, jobs...)

			if !hasNextPage(html) {
				return nil
			}
		}
		return nil
	})

	log.Printf("[%s] fetched=%d", sourceName, len(out))
	return out, err
}

func (s *Scraper) searchURL(q domain.SearchQuery, page int) string {
	v := url.Values{}
	if q.Text != "" {
		v.Set("search", q.Text)
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if page > 1 {
		v.Set("page", fmt.Sprint(page))
	}
	return baseURL + "/jobs-search?" + v.Encode()
}

// Selectors for ZipRecruiter's result cards. These go stale; parse failures
// surface as ParseError so the run report shows which site drifted.
const (
	cardSel     = "article.job_result, div.job_content, [data-testid='job-card']"
	titleSel    = "h2 a, a.job_link, [data-testid='job-card-title']"
	companySel  = "[data-testid='job-card-company'], .company_name, a.company_link"
	locationSel = "[data-testid='job-card-location'], .location, .job_location"
	salarySel   = ".salary, [data-testid='job-card-salary'], .perks .salary"
	snippetSel  = ".job_snippet, [data-testid='job-card-snippet'], p.snippet"
)

func (s *Scraper) parsePage(html string) ([]domain.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.ParseError{Source: sourceName, Detail: fmt.Sprintf("bad html: %v", err)}
	}

	var jobs []domain.JobListing
	doc.Find(cardSel).Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find(titleSel).First().Text())
		href, _ := card.Find(titleSel).First().Attr("href")
		company := util.CleanText(card.Find(companySel).First().Text())
		location := util.NormalizeLocation(card.Find(locationSel).First().Text())
		salaryText := util.CleanText(card.Find(salarySel).First().Text())
		desc := util.CleanText(card.Find(snippetSel).First().Text())

		if title == "" || href == "" {
			return
		}
		abs := href
		if strings.HasPrefix(href, "/") {
			abs = baseURL + href
		}

		lo, hi := util.ParseSalary(salaryText)
		blob := title + " " + desc
		jobs = append(jobs, domain.JobListing{
			Title:       title,
			Company:     company,
			Location:    location,
			Description: desc,
			URL:         abs,
			SalaryMin:   lo,
			SalaryMax:   hi,
			JobType:     util.InferJobType(blob),
			RemoteType:  util.InferRemoteType(location, title, desc),
			Source:      sourceName,
			Skills:      util.ExtractSkills(blob, s.tech),
		})
	})

	return jobs, nil
}

func noResultsPage(html string) bool {
	low := strings.ToLower(html)
	return strings.Contains(low, "no results found") ||
		strings.Contains(low, "did not match any jobs") ||
		strings.Contains(low, "0 jobs")
}

func hasNextPage(html string) bool {
	low := strings.ToLower(html)
	return strings.Contains(low, `title="next page"`) ||
		strings.Contains(low, `aria-label="next page"`) ||
		strings.Contains(low, `rel="next"`)
}

package indeed

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
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
	sourceName = "indeed"
	baseURL    = "https://www.indeed.com"
	// Indeed paginates with a start offset, 10 results per page.
	pageSize = 10
)

func init() {
	types.Register(sourceName, New)
}

type Scraper struct {
	sc      config.SourceConfig
	tech    []string
	limiter *ratelimit.SourceLimiter
	pool    browser.Pool
}

func New(deps types.Deps, cfg config.Config, sc config.SourceConfig) (types.Adapter, error) {
	if deps.Browser == nil {
		return nil, fmt.Errorf("%s: browser pool is required", sourceName)
	}
	if deps.Limiter == nil {
		return nil, fmt.Errorf("%s: rate limiter is required", sourceName)
	}
	return &Scraper{
		sc:      sc,
		tech:    cfg.Filters.TechKeywords,
		limiter: deps.Limiter,
		pool:    deps.Browser,
	}, nil
}

func (s *Scraper) Name() string { return sourceName }

func (s *Scraper) FetchRaw(ctx context.Context, q domain.SearchQuery) ([]domain.JobListing, error) {
	maxPages := s.sc.MaxPages
	if q.MaxPages > 0 && q.MaxPages < maxPages {
		maxPages = q.MaxPages
	}

	var out []domain.JobListing
	err := s.pool.WithSession(ctx, func(sess browser.Session) error {
		for page := 0; page < maxPages; page++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.limiter.Acquire(ctx, sourceName); err != nil {
				return err
			}

			if err := sess.Navigate(ctx, s.searchURL(q, page*pageSize)); err != nil {
				return &types.NetworkError{Op: "navigate search page", Err: err}
			}

			html, err := sess.Content()
			if err != nil {
				return &types.NetworkError{Op: "read page content", Err: err}
			}
			// Indeed fronts suspicious sessions with a Cloudflare
			// interstitial; an apparently fine page with no result feed is
			// the same thing in disguise.
			if util.LooksBlocked(sess.Title(), html) {
				return types.ErrBlocked
			}

			jobs, err := s.parsePage(html)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				if page == 0 && !strings.Contains(strings.ToLower(html), "did not match any jobs") {
					return types.ErrBlocked
				}
				return nil
			}
			out = append(out, jobs...)
		}
		return nil
	})

	log.Printf("[%s] fetched=%d", sourceName, len(out))
	return out, err
}

func (s *Scraper) searchURL(q domain.SearchQuery, start int) string {
	v := url.Values{}
	v.Set("q", q.Text)
	if q.Location != "" {
		v.Set("l", q.Location)
	}
	if start > 0 {
		v.Set("start", strconv.Itoa(start))
	}
	return baseURL + "/jobs?" + v.Encode()
}

func (s *Scraper) parsePage(html string) ([]domain.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.ParseError{Source: sourceName, Detail: fmt.Sprintf("bad html: %v", err)}
	}

	var jobs []domain.JobListing
	doc.Find("div.job_seen_beacon, td.resultContent, [data-testid='slider_item']").Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find("h2.jobTitle a, a.jcs-JobTitle").First()
		title := util.CleanText(titleEl.Text())
		href, _ := titleEl.Attr("href")
		company := util.CleanText(card.Find("[data-testid='company-name'], span.companyName").First().Text())
		location := util.NormalizeLocation(card.Find("[data-testid='text-location'], div.companyLocation").First().Text())
		salaryText := util.CleanText(card.Find(".salary-snippet-container, [data-testid='attribute_snippet_testid'], .metadata.salary-snippet-container").First().Text())
		desc := util.CleanText(card.Find(".job-snippet, [data-testid='belowJobSnippet']").First().Text())

		if title == "" || href == "" {
			return
		}
		abs := href
		if strings.HasPrefix(href, "/") {
			abs = baseURL + href
		}

		lo, hi := util.ParseSalary(salaryText)
		blob := title + " " + desc + " " + salaryText
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

// Package linkedin scrapes LinkedIn's public job search, the one surface
// that works without authentication. Listings are sparser than the logged-in
// experience but high quality.
package linkedin

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
	sourceName = "linkedin"
	baseURL    = "https://www.linkedin.com"
	pageSize   = 25
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
			if util.LooksBlocked(sess.Title(), html) {
				return types.ErrBlocked
			}
			// The public search silently swaps in an auth wall when it has
			// seen too much of us. That page parses fine and contains zero
			// cards, so catch it explicitly.
			if strings.Contains(html, "authwall") || sess.Count("form.join-form") > 0 {
				return types.ErrBlocked
			}

			jobs, err := s.parsePage(html)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				if page == 0 && !strings.Contains(strings.ToLower(html), "no matching jobs") {
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
	v.Set("keywords", q.Text)
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if start > 0 {
		v.Set("start", strconv.Itoa(start))
	}
	return baseURL + "/jobs/search?" + v.Encode()
}

func (s *Scraper) parsePage(html string) ([]domain.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &types.ParseError{Source: sourceName, Detail: fmt.Sprintf("bad html: %v", err)}
	}

	var jobs []domain.JobListing
	doc.Find("div.base-card, li div.base-search-card").Each(func(_ int, card *goquery.Selection) {
		title := util.CleanText(card.Find("h3.base-search-card__title").First().Text())
		href, _ := card.Find("a.base-card__full-link, a.base-search-card--link").First().Attr("href")
		company := util.CleanText(card.Find("h4.base-search-card__subtitle a, h4.base-search-card__subtitle").First().Text())
		location := util.NormalizeLocation(card.Find("span.job-search-card__location").First().Text())

		if title == "" || href == "" {
			return
		}

		blob := title
		jobs = append(jobs, domain.JobListing{
			Title:      title,
			Company:    company,
			Location:   location,
			URL:        href,
			JobType:    util.InferJobType(blob),
			RemoteType: util.InferRemoteType(location, title, ""),
			Source:     sourceName,
			Skills:     util.ExtractSkills(blob, s.tech),
		})
	})

	return jobs, nil
}

// Package emailalerts scrapes job-alert emails from an IMAP inbox. Alert
// mail surfaces postings the public boards have already put behind login
// walls, so listings from here are sparse but high signal.
package emailalerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

const sourceName = "emailalerts"

func init() {
	types.Register(sourceName, New)
}

type Adapter struct {
	deps  types.Deps
	email config.EmailConfig
}

func New(deps types.Deps, cfg config.Config, _ config.SourceConfig) (types.Adapter, error) {
	if deps.EmailPassword == nil {
		return nil, fmt.Errorf("%s: no password provider wired", sourceName)
	}
	if cfg.Email.IMAPHost == "" || cfg.Email.Username == "" {
		return nil, fmt.Errorf("%s: imap_host and username are required", sourceName)
	}
	return &Adapter{deps: deps, email: cfg.Email}, nil
}

func (a *Adapter) Name() string { return sourceName }

func (a *Adapter) FetchRaw(ctx context.Context, q domain.SearchQuery) ([]domain.JobListing, error) {
	if err := a.deps.Limiter.Acquire(ctx, sourceName); err != nil {
		return nil, err
	}

	password, err := a.deps.EmailPassword()
	if err != nil {
		return nil, fmt.Errorf("%s: password: %w", sourceName, err)
	}

	port := a.email.IMAPPort
	if port == 0 {
		port = 993
	}
	addr := fmt.Sprintf("%s:%d", a.email.IMAPHost, port)

	c, err := dialAndLogin(ctx, addr, a.email.Username, password)
	if err != nil {
		return nil, &types.NetworkError{Op: "imap connect", Err: err}
	}
	defer logoutAndClose(c)

	mailbox := a.email.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if err := selectMailbox(c, mailbox); err != nil {
		return nil, &types.NetworkError{Op: "imap select", Err: err}
	}

	msgs, err := fetchRecent(ctx, c, a.email.MaxMessages)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &types.NetworkError{Op: "imap fetch", Err: err}
	}

	var listings []domain.JobListing
	seen := make(map[string]bool)
	for _, m := range msgs {
		if !a.subjectMatches(m.Subject) {
			continue
		}
		html, ok := htmlBody(m.Raw)
		if !ok {
			continue
		}
		for _, cand := range parseAlertHTML(html) {
			if cand.URL == "" || seen[cand.URL] {
				continue
			}
			seen[cand.URL] = true
			listings = append(listings, a.toListing(cand, m.Date, q))
		}
	}
	return matchQuery(listings, q), nil
}

// subjectMatches keeps only alert mail. With no configured subjects every
// message is scanned, which works but wastes parse time on newsletters.
func (a *Adapter) subjectMatches(subject string) bool {
	if len(a.email.SubjectAny) == 0 {
		return true
	}
	lower := strings.ToLower(subject)
	for _, want := range a.email.SubjectAny {
		if strings.Contains(lower, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func (a *Adapter) toListing(c alertCandidate, date time.Time, _ domain.SearchQuery) domain.JobListing {
	title := util.CleanText(c.Title)
	return domain.JobListing{
		Title:      title,
		Company:    util.CleanText(c.Company),
		Location:   util.NormalizeLocation(c.Location),
		URL:        c.URL,
		JobType:    domain.JobTypeUnknown,
		RemoteType: util.InferRemoteType(c.Location, title, ""),
		Source:     sourceName,
		PostedAt:   date,
	}
}

// matchQuery applies the query terms client side; an inbox cannot be
// searched by role the way a board can.
func matchQuery(listings []domain.JobListing, q domain.SearchQuery) []domain.JobListing {
	terms := strings.Fields(strings.ToLower(q.Text))
	if len(terms) == 0 {
		return listings
	}
	var out []domain.JobListing
	for _, l := range listings {
		hay := strings.ToLower(l.Title + " " + l.Company)
		for _, t := range terms {
			if strings.Contains(hay, t) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

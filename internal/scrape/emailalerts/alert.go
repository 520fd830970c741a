package emailalerts

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscout-engine/internal/scrape/util"
)

var reJobView = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)

// alertCandidate accumulates fragments for one job id across the several
// anchors an alert email wraps around the same posting.
type alertCandidate struct {
	ID       string
	URL      string
	Title    string
	Company  string
	Location string
}

// parseAlertHTML extracts job postings from a job-alert email body. Alert
// mail links the same posting from the logo, the title, and a footer CTA,
// so candidates are merged by job id and the longest anchor text wins as
// the title.
func parseAlertHTML(html string) []alertCandidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	byID := make(map[string]*alertCandidate)
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := reJobView.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]

		cand, seen := byID[id]
		if !seen {
			cand = &alertCandidate{ID: id, URL: cleanAlertURL(href)}
			byID[id] = cand
			order = append(order, id)
		}

		text := util.CleanText(a.Text())
		if looksLikeTitle(text) && len(text) > len(cand.Title) {
			cand.Title = text
		}
		if cand.Company == "" || cand.Location == "" {
			company, location := companyLocationNear(a)
			if cand.Company == "" {
				cand.Company = company
			}
			if cand.Location == "" {
				cand.Location = location
			}
		}
	})

	out := make([]alertCandidate, 0, len(order))
	for _, id := range order {
		c := byID[id]
		if c.Title == "" {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// companyLocationNear looks for the "Company · Location" line that alert
// templates place in a sibling or parent cell of the job link.
func companyLocationNear(a *goquery.Selection) (company, location string) {
	scope := a.Closest("td, tr, div")
	if scope.Length() == 0 {
		return "", ""
	}
	scope.Find("p, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := util.CleanText(s.Text())
		sep := " · "
		if !strings.Contains(text, sep) {
			sep = " - "
			if !strings.Contains(text, sep) {
				return true
			}
		}
		parts := strings.SplitN(text, sep, 2)
		if len(parts) == 2 && parts[0] != "" && looksLikeLocation(parts[1]) {
			company = util.CleanText(parts[0])
			location = util.NormalizeLocation(parts[1])
			return false
		}
		return true
	})
	return company, location
}

func looksLikeTitle(text string) bool {
	if len(text) < 4 || len(text) > 160 {
		return false
	}
	lower := strings.ToLower(text)
	for _, cta := range []string{"see all jobs", "view job", "apply now", "unsubscribe", "manage alerts", "help center"} {
		if strings.Contains(lower, cta) {
			return false
		}
	}
	return true
}

func looksLikeLocation(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > 80 {
		return false
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "remote") || strings.Contains(lower, "united states") {
		return true
	}
	return strings.Contains(text, ",")
}

// cleanAlertURL strips the click-tracking query the mailer wraps around the
// posting link, keeping a stable URL for dedup.
func cleanAlertURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Package dedup decides whether two listings describe the same posting and
// merges confirmed duplicates into one record.
package dedup

import (
	"net/url"
	"sort"
	"strings"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

// CanonicalURL normalizes a posting URL for identity comparison: scheme and
// host lowercased, fragment and tracking parameters dropped, query sorted,
// trailing slash removed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "trk" || lk == "refid" {
			q.Del(k)
		}
	}

	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// Identify reports whether a and b are the same posting. Equal canonical
// URLs always match, regardless of source. When URLs differ the cross-post
// heuristic requires normalized title and company to match exactly and the
// locations to agree at city level.
func Identify(a, b domain.JobListing) bool {
	ua, ub := CanonicalURL(a.URL), CanonicalURL(b.URL)
	if ua != "" && ua == ub {
		return true
	}

	if normalizeField(a.Title) == "" || normalizeField(a.Company) == "" {
		return false
	}
	if normalizeField(a.Title) != normalizeField(b.Title) {
		return false
	}
	if normalizeField(a.Company) != normalizeField(b.Company) {
		return false
	}
	return sameCity(a.Location, b.Location)
}

// Merge folds dup into base, producing one record with the union of the
// informative fields. The caller picks base as the higher-scoring listing;
// dup's source is preserved as provenance instead of silently dropped.
func Merge(base, dup domain.JobListing) domain.JobListing {
	out := base

	if out.Description == "" || len(dup.Description) > len(out.Description) {
		if dup.Description != "" {
			out.Description = dup.Description
		}
	}
	if out.SalaryMin == nil && dup.SalaryMin != nil {
		out.SalaryMin = dup.SalaryMin
	}
	if out.SalaryMax == nil && dup.SalaryMax != nil {
		out.SalaryMax = dup.SalaryMax
	}
	if !out.JobTypeKnown() && dup.JobTypeKnown() {
		out.JobType = dup.JobType
	}
	if !out.RemoteTypeKnown() && dup.RemoteTypeKnown() {
		out.RemoteType = dup.RemoteType
	}
	if out.Location == "" {
		out.Location = dup.Location
	}
	if out.PostedAt.IsZero() {
		out.PostedAt = dup.PostedAt
	}
	out.Skills = unionSkills(out.Skills, dup.Skills)

	if dup.Source != out.Source {
		out.AlternateSources = appendUnique(out.AlternateSources, dup.Source)
	}
	for _, s := range dup.AlternateSources {
		if s != out.Source {
			out.AlternateSources = appendUnique(out.AlternateSources, s)
		}
	}
	return out
}

// CompanyToken is the grouping key the aggregator uses to scope the
// cross-post heuristic: the first significant word of the company name.
func CompanyToken(company string) string {
	norm := normalizeField(company)
	for _, w := range strings.Fields(norm) {
		switch w {
		case "the", "inc", "llc", "ltd", "corp", "co":
			continue
		}
		return w
	}
	return norm
}

func normalizeField(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func sameCity(a, b string) bool {
	ca, cb := util.City(a), util.City(b)
	if ca == "" || cb == "" {
		return ca == cb
	}
	return strings.EqualFold(ca, cb)
}

func unionSkills(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := append([]string(nil), a...)
	for _, s := range b {
		out = appendUnique(out, s)
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, have := range list {
		if strings.EqualFold(have, v) {
			return list
		}
	}
	return append(list, v)
}

// Package aggregate merges per-source scrape outcomes into one ranked,
// deduplicated result set.
package aggregate

import (
	"sort"
	"time"

	"jobscout-engine/internal/dedup"
	"jobscout-engine/internal/domain"
)

// Merge combines all outcomes into an AggregatedResult. Duplicates are
// collapsed with dedup.Identify, exact URL matches first, then the
// cross-post heuristic within company-token groups. Ranking is fully
// deterministic regardless of the order sources finished in.
func Merge(runID string, query domain.SearchQuery, outcomes []domain.ScrapeOutcome, duration time.Duration) domain.AggregatedResult {
	res := domain.AggregatedResult{
		RunID:    runID,
		Query:    query,
		Outcomes: outcomes,
		Duration: duration,
	}

	var working []domain.ScoredListing
	for _, o := range outcomes {
		res.RawCount += o.RawCount
		working = append(working, o.Listings...)
	}

	working = collapseByURL(working)
	working = collapseCrossPosts(working)
	rank(working)

	res.Listings = working
	// Everything that did not survive counts as filtered out, whether the
	// quality gate or the deduplicator removed it.
	res.FilteredOut = res.RawCount - len(res.Listings)
	return res
}

// collapseByURL folds listings sharing a canonical URL. First occurrence
// order is preserved so the pass is stable.
func collapseByURL(in []domain.ScoredListing) []domain.ScoredListing {
	index := make(map[string]int, len(in))
	var out []domain.ScoredListing
	for _, l := range in {
		key := dedup.CanonicalURL(l.URL)
		if key == "" {
			out = append(out, l)
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = mergeScored(out[i], l)
			continue
		}
		index[key] = len(out)
		out = append(out, l)
	}
	return out
}

// collapseCrossPosts runs the title/company/location heuristic, but only
// between listings whose company names share a token. That keeps the pass
// near-linear instead of quadratic over the whole set.
func collapseCrossPosts(in []domain.ScoredListing) []domain.ScoredListing {
	groups := make(map[string][]int)
	for i, l := range in {
		tok := dedup.CompanyToken(l.Company)
		if tok == "" {
			continue
		}
		groups[tok] = append(groups[tok], i)
	}

	dropped := make(map[int]bool)
	for _, idxs := range groups {
		for a := 0; a < len(idxs); a++ {
			if dropped[idxs[a]] {
				continue
			}
			for b := a + 1; b < len(idxs); b++ {
				if dropped[idxs[b]] {
					continue
				}
				if !dedup.Identify(in[idxs[a]].JobListing, in[idxs[b]].JobListing) {
					continue
				}
				in[idxs[a]] = mergeScored(in[idxs[a]], in[idxs[b]])
				dropped[idxs[b]] = true
			}
		}
	}

	if len(dropped) == 0 {
		return in
	}
	out := in[:0]
	for i, l := range in {
		if !dropped[i] {
			out = append(out, l)
		}
	}
	return out
}

// mergeScored keeps the higher-scoring listing as the base record and folds
// the other's fields in. Score ties break toward the preferred source.
func mergeScored(a, b domain.ScoredListing) domain.ScoredListing {
	base, dup := a, b
	if b.Quality > a.Quality || (b.Quality == a.Quality && b.Priority < a.Priority) {
		base, dup = b, a
	}
	merged := base
	merged.JobListing = dedup.Merge(base.JobListing, dup.JobListing)
	if dup.Priority < merged.Priority {
		merged.Priority = dup.Priority
	}
	if dup.Discovered < merged.Discovered {
		merged.Discovered = dup.Discovered
	}
	return merged
}

// rank orders listings by quality descending, then source priority
// ascending, then discovery order, with the canonical URL as a final total
// ordering guarantee.
func rank(listings []domain.ScoredListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.Quality != b.Quality {
			return a.Quality > b.Quality
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Discovered != b.Discovered {
			return a.Discovered < b.Discovered
		}
		return dedup.CanonicalURL(a.URL) < dedup.CanonicalURL(b.URL)
	})
}

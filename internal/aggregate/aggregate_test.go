package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
)

func scored(source, title, url string, quality float64, priority, discovered int) domain.ScoredListing {
	return domain.ScoredListing{
		JobListing: domain.JobListing{
			Title:   title,
			Company: "Acme",
			URL:     url,
			Source:  source,
		},
		Quality:    quality,
		Priority:   priority,
		Discovered: discovered,
	}
}

func TestMergeTwoSourcesWithURLDuplicate(t *testing.T) {
	// Source A: 10 raw, 6 pass. Source B: 5 raw, 3 pass, one of which is an
	// A listing under the same URL. Expect 8 survivors, raw 15, filtered 7.
	var aListings []domain.ScoredListing
	for i := 0; i < 6; i++ {
		aListings = append(aListings, scored("ziprecruiter", fmt.Sprintf("LLM Engineer %d", i),
			fmt.Sprintf("https://example.com/a/%d", i), 0.9-float64(i)*0.01, 1, i))
	}
	bListings := []domain.ScoredListing{
		scored("indeed", "LLM Engineer 0", "https://EXAMPLE.com/a/0/?utm_source=x", 0.7, 2, 0),
		scored("indeed", "ML Platform Engineer", "https://example.com/b/1", 0.8, 2, 1),
		scored("indeed", "Applied AI Engineer", "https://example.com/b/2", 0.6, 2, 2),
	}
	outcomes := []domain.ScrapeOutcome{
		{Source: "ziprecruiter", Listings: aListings, RawCount: 10, FilteredOut: 4, Status: domain.StatusOK},
		{Source: "indeed", Listings: bListings, RawCount: 5, FilteredOut: 2, Status: domain.StatusOK},
	}

	res := Merge("run-1", domain.SearchQuery{Text: "LLM engineer"}, outcomes, 2*time.Second)
	assert.Len(t, res.Listings, 8)
	assert.Equal(t, 15, res.RawCount)
	assert.Equal(t, 7, res.FilteredOut)

	// The duplicate keeps the higher-scoring record and its provenance.
	top := res.Listings[0]
	assert.Equal(t, "ziprecruiter", top.Source)
	assert.Equal(t, 0.9, top.Quality)
	assert.Equal(t, []string{"indeed"}, top.AlternateSources)
}

func TestMergeIsIdempotent(t *testing.T) {
	outcomes := []domain.ScrapeOutcome{
		{Source: "a", Listings: []domain.ScoredListing{
			scored("a", "LLM Engineer", "https://x.com/1", 0.8, 1, 0),
			scored("a", "RAG Engineer", "https://x.com/2", 0.8, 1, 1),
		}, RawCount: 2, Status: domain.StatusOK},
		{Source: "b", Listings: []domain.ScoredListing{
			scored("b", "NLP Engineer", "https://y.com/9", 0.9, 2, 0),
		}, RawCount: 1, Status: domain.StatusOK},
	}

	first := Merge("r", domain.SearchQuery{}, outcomes, 0)
	second := Merge("r", domain.SearchQuery{}, outcomes, 0)
	assert.Equal(t, first.Listings, second.Listings)
	assert.Equal(t, first.RawCount, second.RawCount)
}

func TestRankingOrder(t *testing.T) {
	outcomes := []domain.ScrapeOutcome{{Source: "a", Listings: []domain.ScoredListing{
		scored("a", "C", "https://x.com/c", 0.7, 2, 0),
		scored("a", "A", "https://x.com/a", 0.9, 1, 3),
		scored("a", "B", "https://x.com/b", 0.7, 1, 5),
		scored("a", "D", "https://x.com/d", 0.7, 1, 2),
	}, Status: domain.StatusOK}}

	res := Merge("r", domain.SearchQuery{}, outcomes, 0)
	require.Len(t, res.Listings, 4)
	titles := []string{res.Listings[0].Title, res.Listings[1].Title, res.Listings[2].Title, res.Listings[3].Title}
	// Score first, then priority, then discovery order.
	assert.Equal(t, []string{"A", "D", "B", "C"}, titles)
}

func TestCrossPostCollapsedWithinCompanyGroup(t *testing.T) {
	a := scored("indeed", "Senior LLM Engineer", "https://indeed.com/v/1", 0.8, 2, 0)
	a.Location = "Austin, TX"
	b := scored("ziprecruiter", "Senior LLM Engineer", "https://ziprecruiter.com/v/2", 0.9, 1, 0)
	b.Location = "Austin, Texas"

	res := Merge("r", domain.SearchQuery{}, []domain.ScrapeOutcome{
		{Source: "indeed", Listings: []domain.ScoredListing{a}, RawCount: 1, Status: domain.StatusOK},
		{Source: "ziprecruiter", Listings: []domain.ScoredListing{b}, RawCount: 1, Status: domain.StatusOK},
	}, 0)

	require.Len(t, res.Listings, 1)
	assert.Equal(t, "ziprecruiter", res.Listings[0].Source, "higher score wins as base")
	assert.Equal(t, []string{"indeed"}, res.Listings[0].AlternateSources)
}

func TestBlockedOutcomeContributesNothingButIsReported(t *testing.T) {
	res := Merge("r", domain.SearchQuery{}, []domain.ScrapeOutcome{
		{Source: "linkedin", Status: domain.StatusBlocked, Err: "access denied"},
		{Source: "remoteok", Listings: []domain.ScoredListing{
			scored("remoteok", "LLM Engineer", "https://remoteok.com/1", 0.6, 4, 0),
		}, RawCount: 1, Status: domain.StatusOK},
	}, 0)

	assert.Len(t, res.Listings, 1)
	assert.Equal(t, []string{"linkedin"}, res.FailedSources())
	assert.Equal(t, []string{"remoteok"}, res.SucceededSources())
}

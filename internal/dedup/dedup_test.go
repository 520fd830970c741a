package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
)

func intp(v int) *int { return &v }

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://WWW.Example.com/jobs/123",
			want: "https://www.example.com/jobs/123",
		},
		{
			name: "strips tracking params and sorts the rest",
			in:   "https://example.com/j?utm_source=alert&b=2&a=1&gclid=xyz",
			want: "https://example.com/j?a=1&b=2",
		},
		{
			name: "removes trailing slash and fragment",
			in:   "https://example.com/jobs/123/#apply",
			want: "https://example.com/jobs/123",
		},
		{
			name: "linkedin keeps only currentJobId",
			in:   "https://www.linkedin.com/jobs/search?currentJobId=99&keywords=llm&trk=mail",
			want: "https://www.linkedin.com/jobs/search?currentJobId=99",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanonicalURL(tc.in))
		})
	}
}

func TestIdentifySameCanonicalURL(t *testing.T) {
	a := domain.JobListing{URL: "https://example.com/jobs/42?utm_source=x", Source: "indeed"}
	b := domain.JobListing{URL: "https://EXAMPLE.com/jobs/42/", Source: "ziprecruiter"}
	assert.True(t, Identify(a, b))
	assert.True(t, Identify(b, a), "relation is symmetric")
	assert.True(t, Identify(a, a), "relation is reflexive")
}

func TestIdentifyCrossPostHeuristic(t *testing.T) {
	a := domain.JobListing{
		Title: "Senior LLM Engineer", Company: "Acme AI, Inc.",
		Location: "Austin, TX", URL: "https://indeed.com/v/1",
	}
	b := domain.JobListing{
		Title: "senior llm engineer", Company: "Acme AI Inc",
		Location: "Austin, Texas", URL: "https://ziprecruiter.com/v/2",
	}
	assert.True(t, Identify(a, b))

	c := b
	c.Location = "Dallas, TX"
	assert.False(t, Identify(a, c), "different city breaks the match")

	d := b
	d.Company = "Initech"
	assert.False(t, Identify(a, d), "different company breaks the match")
}

func TestIdentifyRequiresTitleAndCompany(t *testing.T) {
	a := domain.JobListing{URL: "https://x.com/1"}
	b := domain.JobListing{URL: "https://x.com/2"}
	assert.False(t, Identify(a, b), "empty fields never match heuristically")
}

func TestMergeUnionsInformativeFields(t *testing.T) {
	base := domain.JobListing{
		Title: "LLM Engineer", Company: "Acme", Source: "indeed",
		URL:        "https://indeed.com/v/1",
		JobType:    domain.JobTypeUnknown,
		RemoteType: domain.RemoteTypeRemote,
	}
	dup := domain.JobListing{
		Title: "LLM Engineer", Company: "Acme", Source: "ziprecruiter",
		URL:         "https://ziprecruiter.com/v/2",
		Description: "Build and ship LLM products.",
		SalaryMin:   intp(150000), SalaryMax: intp(180000),
		JobType: domain.JobTypeFullTime,
		Skills:  []string{"python", "pytorch"},
	}

	got := Merge(base, dup)
	assert.Equal(t, "https://indeed.com/v/1", got.URL, "base record wins identity")
	assert.Equal(t, "Build and ship LLM products.", got.Description)
	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, 150000, *got.SalaryMin)
	assert.Equal(t, domain.JobTypeFullTime, got.JobType)
	assert.Equal(t, domain.RemoteTypeRemote, got.RemoteType, "known base field is kept")
	assert.Equal(t, []string{"python", "pytorch"}, got.Skills)
	assert.Equal(t, []string{"ziprecruiter"}, got.AlternateSources, "provenance survives the merge")
}

func TestMergeSameSourceAddsNoAlternate(t *testing.T) {
	base := domain.JobListing{Source: "indeed"}
	got := Merge(base, domain.JobListing{Source: "indeed"})
	assert.Empty(t, got.AlternateSources)
}

func TestCompanyToken(t *testing.T) {
	assert.Equal(t, "acme", CompanyToken("The Acme Corp"))
	assert.Equal(t, "acme", CompanyToken("ACME AI, Inc."))
	assert.Equal(t, "", CompanyToken(""))
}

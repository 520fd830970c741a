package emailalerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/domain"
)

const sampleAlertHTML = `
<html><body>
<table><tr><td>
  <a href="https://www.linkedin.com/jobs/view/senior-ml-engineer-4012345678?trk=alert"><img src="logo.png"></a>
  <a href="https://www.linkedin.com/jobs/view/senior-ml-engineer-4012345678?trk=alert">Senior ML Engineer</a>
  <p>Acme AI · Austin, TX</p>
</td></tr>
<tr><td>
  <a href="https://www.linkedin.com/jobs/view/4099999999?trk=alert">Staff Platform Engineer</a>
  <p>Initech - Remote</p>
</td></tr>
<tr><td>
  <a href="https://www.linkedin.com/jobs/search?keywords=ml">See all jobs</a>
  <a href="https://www.linkedin.com/help">Help Center</a>
</td></tr></table>
</body></html>`

func TestParseAlertHTMLMergesAnchorsByJobID(t *testing.T) {
	cands := parseAlertHTML(sampleAlertHTML)
	require.Len(t, cands, 2)

	assert.Equal(t, "4012345678", cands[0].ID)
	assert.Equal(t, "Senior ML Engineer", cands[0].Title)
	assert.Equal(t, "Acme AI", cands[0].Company)
	assert.Equal(t, "Austin, TX", cands[0].Location)
	assert.Equal(t, "https://www.linkedin.com/jobs/view/senior-ml-engineer-4012345678", cands[0].URL)

	assert.Equal(t, "Staff Platform Engineer", cands[1].Title)
	assert.Equal(t, "Initech", cands[1].Company)
	assert.Equal(t, "Remote", cands[1].Location)
}

func TestParseAlertHTMLSkipsFooterLinks(t *testing.T) {
	cands := parseAlertHTML(`<a href="/jobs/view/123">Unsubscribe</a>`)
	assert.Empty(t, cands)
}

func TestMatchQueryFiltersByTerms(t *testing.T) {
	listings := []domain.JobListing{
		{Title: "Machine Learning Engineer", Company: "Acme"},
		{Title: "Accountant", Company: "Initech"},
	}
	got := matchQuery(listings, domain.SearchQuery{Text: "machine learning"})
	require.Len(t, got, 1)
	assert.Equal(t, "Machine Learning Engineer", got[0].Title)

	got = matchQuery(listings, domain.SearchQuery{})
	assert.Len(t, got, 2)
}

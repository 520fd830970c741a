package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

func testFilter(t *testing.T, source string) *Filter {
	t.Helper()
	cfg := config.Default()
	sc, ok := cfg.Sources[source]
	require.True(t, ok)
	return New(cfg, sc)
}

func intp(v int) *int { return &v }

func goodListing() domain.JobListing {
	return domain.JobListing{
		Title:       "Senior LLM Engineer",
		Company:     "Acme AI",
		Location:    "Austin, TX",
		Description: strings.Repeat("Build RAG pipelines with Python, PyTorch, and LangChain on AWS. ", 30),
		SalaryMin:   intp(150000),
		SalaryMax:   intp(190000),
		JobType:     domain.JobTypeFullTime,
		RemoteType:  domain.RemoteTypeRemote,
		Source:      "indeed",
	}
}

func TestAcceptGoodListing(t *testing.T) {
	f := testFilter(t, "indeed")
	ok, score := f.Accept(goodListing(), false)
	assert.True(t, ok)
	assert.Greater(t, score, 0.8)
	assert.LessOrEqual(t, score, 1.0)
}

func TestAcceptIsPureAndDeterministic(t *testing.T) {
	f := testFilter(t, "indeed")
	l := goodListing()
	ok1, s1 := f.Accept(l, false)
	for i := 0; i < 10; i++ {
		ok, s := f.Accept(l, false)
		assert.Equal(t, ok1, ok)
		assert.Equal(t, s1, s)
	}
}

func TestRejectWithoutRequiredKeyword(t *testing.T) {
	f := testFilter(t, "indeed")
	l := goodListing()
	l.Title = "Staff Accountant"
	l.Description = "Prepare monthly financial statements and reconciliations."
	ok, _ := f.Accept(l, false)
	assert.False(t, ok)
}

func TestExcludeKeywordWinsOverRequired(t *testing.T) {
	f := testFilter(t, "indeed")
	l := goodListing()
	l.Title = "Senior Sales Representative, commission only"
	// Description still matches required keywords; exclusion must win.
	ok, _ := f.Accept(l, false)
	assert.False(t, ok)
}

func TestSalaryBelowFloorRejected(t *testing.T) {
	f := testFilter(t, "indeed") // min_salary 85000
	l := goodListing()
	l.SalaryMin = intp(40000)
	l.SalaryMax = intp(40000)
	ok, score := f.Accept(l, false)
	assert.False(t, ok)
	assert.Greater(t, score, 0.0, "score is still produced for rejected listings")
}

func TestMissingSalaryDoesNotReject(t *testing.T) {
	f := testFilter(t, "indeed")
	l := goodListing()
	withSalary := f.Score(l)
	l.SalaryMin, l.SalaryMax = nil, nil
	ok, without := f.Accept(l, false)
	assert.True(t, ok)
	assert.Less(t, without, withSalary, "missing salary lowers the score")
}

func TestSalaryCeilingClearsFloor(t *testing.T) {
	f := testFilter(t, "indeed")
	l := goodListing()
	l.SalaryMin = intp(70000)
	l.SalaryMax = intp(120000)
	ok, _ := f.Accept(l, false)
	assert.True(t, ok, "range topping above the floor passes")
}

func TestThresholdIsInclusive(t *testing.T) {
	cfg := config.Default()
	sc := cfg.Sources["indeed"]
	f := New(cfg, sc)
	l := goodListing()
	score := f.Score(l)

	sc.MinQuality = score
	exact := New(cfg, sc)
	ok, _ := exact.Accept(l, false)
	assert.True(t, ok, "score exactly at threshold is accepted")
}

func TestStrictModeUsesHigherBar(t *testing.T) {
	cfg := config.Default()
	sc := cfg.Sources["indeed"]
	sc.MinQuality = 0.2
	sc.MinQualityStrict = 0.99
	f := New(cfg, sc)

	l := goodListing()
	l.Description = "LLM work." // short description keeps the score mid-range
	okGeneral, score := f.Accept(l, false)
	require.Less(t, score, 0.99)
	okStrict, _ := f.Accept(l, true)
	assert.True(t, okGeneral)
	assert.False(t, okStrict)
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	f := testFilter(t, "indeed")
	assert.GreaterOrEqual(t, f.Score(domain.JobListing{}), 0.0)
	assert.LessOrEqual(t, f.Score(goodListing()), 1.0)
}

func TestTechKeywordDiminishingReturns(t *testing.T) {
	cfg := config.Default()
	f := New(cfg, cfg.Sources["indeed"])

	base := domain.JobListing{Description: "python pytorch langchain aws kubernetes"}
	extra := base
	extra.Description += " tensorflow huggingface openai anthropic jax"
	assert.Equal(t, f.Score(base), f.Score(extra), "hits past the cap add nothing")
}

// Package filter scores listings and decides whether they are worth
// keeping. Filtering is pure: given the same configuration, the same
// listing always yields the same score and verdict.
package filter

import (
	"strings"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
)

// Filter is the per-source quality gate. Keyword vocabularies are shared
// across sources; salary bounds and thresholds come from the source's own
// configuration because salary norms differ by platform.
type Filter struct {
	required []string
	exclude  []string
	tech     []string

	minSalary int
	maxSalary int

	minQuality       float64
	minQualityStrict float64

	descWeight   float64
	salaryWeight float64
	typeWeight   float64
	remoteWeight float64
	techWeight   float64
	descCap      int
	techCap      int
}

func New(cfg config.Config, sc config.SourceConfig) *Filter {
	f := &Filter{
		required: lowerAll(cfg.Filters.RequiredKeywords),
		exclude:  lowerAll(cfg.Filters.ExcludeKeywords),
		tech:     lowerAll(cfg.Filters.TechKeywords),

		minSalary:        sc.MinSalary,
		maxSalary:        sc.MaxSalary,
		minQuality:       sc.MinQuality,
		minQualityStrict: sc.MinQualityStrict,

		descWeight:   cfg.Scoring.DescriptionWeight,
		salaryWeight: cfg.Scoring.SalaryWeight,
		typeWeight:   cfg.Scoring.JobTypeWeight,
		remoteWeight: cfg.Scoring.RemoteTypeWeight,
		techWeight:   cfg.Scoring.TechWeight,
		descCap:      cfg.Scoring.DescriptionCapChars,
		techCap:      cfg.Scoring.TechCap,
	}
	if f.descCap <= 0 {
		f.descCap = 1500
	}
	if f.techCap <= 0 {
		f.techCap = 5
	}
	return f
}

// Accept reports whether the listing clears every gate, along with its
// quality score. The decision is conjunctive; exclusion always wins over
// a matching required keyword, and the threshold is inclusive.
func (f *Filter) Accept(l domain.JobListing, strict bool) (bool, float64) {
	score := f.Score(l)

	// An empty required set disables the keyword gate rather than
	// rejecting everything.
	titleDesc := strings.ToLower(l.Title + " " + l.Description)
	if len(f.required) > 0 && !containsAny(titleDesc, f.required) {
		return false, score
	}

	everything := strings.ToLower(l.Title + " " + l.Company + " " + l.Description)
	if containsAny(everything, f.exclude) {
		return false, score
	}

	if !f.salaryInBounds(l) {
		return false, score
	}

	threshold := f.minQuality
	if strict {
		threshold = f.minQualityStrict
	}
	return score >= threshold, score
}

// Score is the continuous quality signal in [0,1]: description length
// saturating at descCap, fixed increments for salary, job type, and remote
// type being known, and tech keyword hits with diminishing returns past
// techCap.
func (f *Filter) Score(l domain.JobListing) float64 {
	var score float64

	descLen := len(l.Description)
	if descLen > f.descCap {
		descLen = f.descCap
	}
	score += f.descWeight * float64(descLen) / float64(f.descCap)

	if l.HasSalary() {
		score += f.salaryWeight
	}
	if l.JobTypeKnown() {
		score += f.typeWeight
	}
	if l.RemoteTypeKnown() {
		score += f.remoteWeight
	}

	hay := strings.ToLower(l.Title + " " + l.Description)
	hits := 0
	for _, kw := range f.tech {
		if strings.Contains(hay, kw) {
			hits++
			if hits == f.techCap {
				break
			}
		}
	}
	score += f.techWeight * float64(hits) / float64(f.techCap)

	if score > 1 {
		score = 1
	}
	return score
}

// salaryInBounds rejects only when the listing states a salary outside the
// source's configured band. Missing salary passes; Score already penalizes
// the omission.
func (f *Filter) salaryInBounds(l domain.JobListing) bool {
	if !l.HasSalary() {
		return true
	}
	// Prefer the top of the range when both ends are present; a posting
	// whose ceiling clears the floor is still worth a look.
	stated := 0
	if l.SalaryMax != nil {
		stated = *l.SalaryMax
	} else if l.SalaryMin != nil {
		stated = *l.SalaryMin
	}

	if f.minSalary > 0 && stated < f.minSalary {
		return false
	}
	if f.maxSalary > 0 {
		low := stated
		if l.SalaryMin != nil {
			low = *l.SalaryMin
		}
		if low > f.maxSalary {
			return false
		}
	}
	return true
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(hay string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(hay, n) {
			return true
		}
	}
	return false
}

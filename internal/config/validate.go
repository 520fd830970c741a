package config

import (
	"fmt"
	"math"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Errors here are configuration errors: the orchestrator
// refuses to start on them.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.RequiredKeywords = trimList(out.Filters.RequiredKeywords)
	out.Filters.ExcludeKeywords = trimList(out.Filters.ExcludeKeywords)
	out.Filters.TechKeywords = trimList(out.Filters.TechKeywords)
	out.Email.SubjectAny = trimList(out.Email.SubjectAny)

	// ---- Validation rules ----

	if len(out.EnabledSources()) == 0 {
		res.addErr("no sources enabled: enable at least one entry under sources")
	}

	if out.Run.TimeoutSeconds <= 0 {
		res.addErr("run.timeout_seconds must be > 0")
	}
	if out.Run.MaxConcurrentSources <= 0 {
		res.addErr("run.max_concurrent_sources must be > 0")
	}
	if out.Run.RetryMax < 0 {
		res.addErr("run.retry_max must be >= 0")
	}

	for name, sc := range out.Sources {
		if !sc.Enabled {
			continue
		}
		if sc.MinDelayMS < 0 || sc.MaxDelayMS < sc.MinDelayMS {
			res.addErr("sources.%s: need 0 <= min_delay_ms <= max_delay_ms", name)
		}
		if sc.MaxRequests <= 0 {
			res.addErr("sources.%s.max_requests must be > 0", name)
		}
		if sc.MaxPages <= 0 {
			res.addErr("sources.%s.max_pages must be > 0", name)
		}
		if sc.MinSalary < 0 || (sc.MaxSalary > 0 && sc.MaxSalary < sc.MinSalary) {
			res.addErr("sources.%s: invalid salary bounds [%d, %d]", name, sc.MinSalary, sc.MaxSalary)
		}
		if sc.MinQuality < 0 || sc.MinQuality > 1 || sc.MinQualityStrict < 0 || sc.MinQualityStrict > 1 {
			res.addErr("sources.%s: quality thresholds must be in [0,1]", name)
		}
		if sc.MinDelayMS < 500 && name != "remoteok" && name != "emailalerts" {
			res.addWarn("sources.%s.min_delay_ms is very low (%d) and may trigger bot detection", name, sc.MinDelayMS)
		}
	}

	if enabled, ok := out.Sources["emailalerts"]; ok && enabled.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when emailalerts is enabled")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when emailalerts is enabled")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when emailalerts is enabled")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when emailalerts is enabled")
		}
		if len(out.Email.SubjectAny) == 0 {
			res.addWarn("email.subject_any is empty; the email-alerts source may find nothing")
		}
	}

	if len(out.Filters.RequiredKeywords) == 0 {
		res.addWarn("filters.required_keywords is empty; every listing will pass the keyword gate")
	}

	s := out.Scoring
	sum := s.DescriptionWeight + s.SalaryWeight + s.JobTypeWeight + s.RemoteTypeWeight + s.TechWeight
	if math.Abs(sum-1.0) > 0.01 {
		res.addWarn("scoring weights sum to %.2f, not 1.0; quality scores will not span [0,1]", sum)
	}
	if s.DescriptionCapChars <= 0 {
		res.addErr("scoring.description_cap_chars must be > 0")
	}
	if s.TechCap <= 0 {
		res.addErr("scoring.tech_cap must be > 0")
	}

	seenPrio := map[int]string{}
	for name, sc := range out.Sources {
		if !sc.Enabled {
			continue
		}
		if other, dup := seenPrio[sc.Priority]; dup {
			res.addWarn("sources %s and %s share priority %d; dedup tie-breaks between them fall back to discovery order", other, name, sc.Priority)
		}
		seenPrio[sc.Priority] = name
	}

	for i, cat := range out.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			res.addErr("categories[%d].name is required", i)
		}
		if len(cat.Queries) == 0 {
			res.addErr("categories[%d] (%s) has no queries", i, cat.Name)
		}
	}

	return out, res
}

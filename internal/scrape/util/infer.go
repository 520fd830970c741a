package util

import (
	"strings"

	"jobscout-engine/internal/domain"
)

func InferRemoteType(location, title, desc string) domain.RemoteType {
	blob := strings.ToLower(strings.Join([]string{location, title, desc}, " "))

	switch {
	case strings.Contains(blob, "hybrid"):
		return domain.RemoteTypeHybrid
	case strings.Contains(blob, "remote") || strings.Contains(blob, "work from home"):
		return domain.RemoteTypeRemote
	case strings.Contains(blob, "on-site") || strings.Contains(blob, "onsite") || strings.Contains(blob, "on site") || strings.Contains(blob, "in office"):
		return domain.RemoteTypeOnsite
	default:
		return domain.RemoteTypeUnknown
	}
}

func InferJobType(text string) domain.JobType {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "intern"):
		return domain.JobTypeInternship
	case strings.Contains(t, "part-time") || strings.Contains(t, "part time"):
		return domain.JobTypePartTime
	case strings.Contains(t, "contract") || strings.Contains(t, "contractor") || strings.Contains(t, "freelance"):
		return domain.JobTypeContract
	case strings.Contains(t, "full-time") || strings.Contains(t, "full time") || strings.Contains(t, "permanent"):
		return domain.JobTypeFullTime
	default:
		return domain.JobTypeUnknown
	}
}

// ExtractSkills picks out known technology keywords mentioned in the text.
func ExtractSkills(text string, techKeywords []string) []string {
	low := strings.ToLower(text)
	var out []string
	seen := map[string]bool{}
	for _, kw := range techKeywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" || seen[k] {
			continue
		}
		if strings.Contains(low, k) {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

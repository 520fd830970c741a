package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// City returns the city-level component of a location string, lowercased.
// "Houston, TX 77002" and "houston" compare equal at this level.
func City(loc string) string {
	loc = strings.ToLower(NormalizeLocation(loc))
	if loc == "" {
		return ""
	}
	if i := strings.Index(loc, ","); i >= 0 {
		loc = loc[:i]
	}
	return strings.TrimSpace(loc)
}

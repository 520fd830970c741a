package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	salaryRangeRe  = regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*([kK])?\s*[-–]\s*\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*([kK])?`)
	salarySingleRe = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*([kK])?`)
)

// ParseSalary pulls an annual USD range out of free-form salary text
// ("$80,000 - $120,000 a year", "$90K+", "Up to $65/hr"). Hourly figures are
// annualized at 2080 hours. Returns nils when nothing parseable is present.
func ParseSalary(text string) (*int, *int) {
	text = CleanText(text)
	if text == "" {
		return nil, nil
	}
	hourly := strings.Contains(strings.ToLower(text), "hour") || strings.Contains(strings.ToLower(text), "/hr")

	if m := salaryRangeRe.FindStringSubmatch(text); m != nil {
		lo := parseAmount(m[1], m[2] != "", hourly)
		hi := parseAmount(m[3], m[4] != "", hourly)
		if lo > 0 && hi >= lo {
			return &lo, &hi
		}
	}

	if m := salarySingleRe.FindStringSubmatch(text); m != nil {
		v := parseAmount(m[1], m[2] != "", hourly)
		if v > 0 {
			return &v, nil
		}
	}

	return nil, nil
}

func parseAmount(digits string, kSuffix, hourly bool) int {
	digits = strings.ReplaceAll(digits, ",", "")
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	if kSuffix {
		f *= 1000
	}
	// Bare small numbers like "$65" only make sense as hourly rates.
	if hourly || (f < 500 && !kSuffix) {
		f *= 2080
	}
	return int(f)
}

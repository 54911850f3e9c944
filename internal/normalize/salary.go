// Package normalize turns the free-text salary and posting-date snippets that
// job boards print into canonical values. Nothing here returns an error: text
// that does not match a known shape yields nil values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Full-time annualisation used for hourly rates.
const (
	hoursPerWeek = 40
	weeksPerYear = 52
)

var (
	yearlyRangeRe  = regexp.MustCompile(`(?i)\$(\d+[,\d]*)\s*-\s*\$(\d+[,\d]*)\s*a\s*year`)
	yearlySingleRe = regexp.MustCompile(`(?i)\$(\d+[,\d]*)\s*a\s*year`)
	hourlyRe       = regexp.MustCompile(`(?i)\$(\d+[,.\d]*)\s*an\s*hour`)
)

// Salary is an annual salary range. Both bounds are nil when the snippet
// could not be understood.
type Salary struct {
	Min *float64
	Max *float64
}

// ParseSalary applies the patterns in order and returns the first match:
//
//	"$A - $B a year" -> (A, B)
//	"$A a year"      -> (A, A)
//	"$A an hour"     -> (A*40*52, A*40*52)
func ParseSalary(text string) Salary {
	if strings.TrimSpace(text) == "" {
		return Salary{}
	}

	if m := yearlyRangeRe.FindStringSubmatch(text); m != nil {
		lo, okLo := parseAmount(m[1])
		hi, okHi := parseAmount(m[2])
		if okLo && okHi {
			return Salary{Min: &lo, Max: &hi}
		}
	}

	if m := yearlySingleRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return Salary{Min: &v, Max: &v}
		}
	}

	if m := hourlyRe.FindStringSubmatch(text); m != nil {
		if rate, ok := parseAmount(m[1]); ok {
			yearly := rate * hoursPerWeek * weeksPerYear
			return Salary{Min: &yearly, Max: &yearly}
		}
	}

	return Salary{}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

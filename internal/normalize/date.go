package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	daysAgoRe  = regexp.MustCompile(`(\d+) days? ago`)
	hoursAgoRe = regexp.MustCompile(`(\d+) hours? ago`)
)

// ParsePostedDate converts a relative posting date ("Today", "5 days ago")
// into the start of the matching UTC day, or nil.
func ParsePostedDate(text string) *time.Time {
	return ParsePostedDateAt(text, time.Now())
}

// ParsePostedDateAt is ParsePostedDate evaluated against a fixed clock.
//
// "N hours ago" resolves to the start of the current day, not N hours back;
// sources only publish day granularity for recent posts.
func ParsePostedDateAt(text string, now time.Time) *time.Time {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}

	today := startOfDay(now)

	if strings.Contains(text, "today") || strings.Contains(text, "just posted") {
		return &today
	}

	if m := daysAgoRe.FindStringSubmatch(text); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			d := today.AddDate(0, 0, -days)
			return &d
		}
	}

	if hoursAgoRe.MatchString(text) {
		return &today
	}

	return nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

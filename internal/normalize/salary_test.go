package normalize_test

import (
	"testing"

	"github.com/Jbelley18/VermontJobs/internal/normalize"
)

// ── ParseSalary — matching shapes ─────────────────────────────────────────

func TestParseSalary_Shapes(t *testing.T) {
	cases := []struct {
		in       string
		min, max float64
	}{
		{"$50,000 - $70,000 a year", 50000, 70000},
		{"$60,000 a year", 60000, 60000},
		{"$25 an hour", 52000, 52000},
		{"$17.50 an hour", 36400, 36400},
		{"Up to $85,000 A YEAR", 85000, 85000},
		{"$45,000-$55,000 a year", 45000, 55000},
		{"$1,200 - $1,500 A Year", 1200, 1500},
	}
	for _, c := range cases {
		got := normalize.ParseSalary(c.in)
		if got.Min == nil || got.Max == nil {
			t.Errorf("ParseSalary(%q) = (nil, nil), want (%v, %v)", c.in, c.min, c.max)
			continue
		}
		if *got.Min != c.min || *got.Max != c.max {
			t.Errorf("ParseSalary(%q) = (%v, %v), want (%v, %v)", c.in, *got.Min, *got.Max, c.min, c.max)
		}
	}
}

// ── ParseSalary — no match yields nil bounds ───────────────────────────────

func TestParseSalary_NoMatch(t *testing.T) {
	for _, in := range []string{"", "   ", "Competitive salary", "$3,000 a month", "DOE"} {
		got := normalize.ParseSalary(in)
		if got.Min != nil || got.Max != nil {
			t.Errorf("ParseSalary(%q) should yield nil bounds, got %+v", in, got)
		}
	}
}

// A range must win over the single-value pattern it also satisfies.
func TestParseSalary_RangeBeforeSingle(t *testing.T) {
	got := normalize.ParseSalary("$40,000 - $48,000 a year")
	if got.Min == nil || *got.Min != 40000 {
		t.Fatalf("expected min 40000, got %+v", got)
	}
	if *got.Max != 48000 {
		t.Errorf("expected max 48000, got %v", *got.Max)
	}
}

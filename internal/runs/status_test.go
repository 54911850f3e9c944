package runs_test

import (
	"testing"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/runs"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range []string{"running", "succeeded", "failed"} {
		got, err := runs.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValues(t *testing.T) {
	for _, s := range []string{"", "RUNNING", "done"} {
		if _, err := runs.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── Transitions ────────────────────────────────────────────────────────────

func TestIsTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to model.RunStatus
		want     bool
	}{
		{model.RunRunning, model.RunSucceeded, true},
		{model.RunRunning, model.RunFailed, true},
		{model.RunRunning, model.RunRunning, false},
		{model.RunSucceeded, model.RunFailed, false},
		{model.RunSucceeded, model.RunRunning, false},
		{model.RunFailed, model.RunSucceeded, false},
		{model.RunFailed, model.RunRunning, false},
	}
	for _, tc := range cases {
		if got := runs.IsTransitionAllowed(tc.from, tc.to); got != tc.want {
			t.Errorf("IsTransitionAllowed(%s → %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if runs.IsTerminal(model.RunRunning) {
		t.Error("running should not be terminal")
	}
	for _, s := range []model.RunStatus{model.RunSucceeded, model.RunFailed} {
		if !runs.IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
}

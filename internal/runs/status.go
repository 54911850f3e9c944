package runs

import (
	"fmt"

	"github.com/Jbelley18/VermontJobs/internal/model"
)

// Run status graph:
//
//	running ──► succeeded
//	   │
//	   └──────► failed
//
// succeeded and failed are terminal.
var validTransitions = map[model.RunStatus][]model.RunStatus{
	model.RunRunning: {model.RunSucceeded, model.RunFailed},
}

// ParseStatus converts a raw string to a RunStatus, returning an error for
// unknown values.
func ParseStatus(s string) (model.RunStatus, error) {
	st := model.RunStatus(s)
	switch st {
	case model.RunRunning, model.RunSucceeded, model.RunFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown run status %q", s)
}

// IsTransitionAllowed reports whether a run may move from → to.
func IsTransitionAllowed(from, to model.RunStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s model.RunStatus) bool {
	return len(validTransitions[s]) == 0
}

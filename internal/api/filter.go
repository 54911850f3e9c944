package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/store"
)

// parseJobFilter reads the GET /jobs query string. Malformed numbers or
// booleans are rejected; limit above the maximum is clamped.
func parseJobFilter(r *http.Request) (model.JobFilter, error) {
	q := r.URL.Query()
	f := model.JobFilter{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Company:  strings.TrimSpace(q.Get("company")),
		Location: strings.TrimSpace(q.Get("location")),
		Tag:      strings.ToLower(strings.TrimSpace(q.Get("tag"))),
		Limit:    store.DefaultLimit,
	}

	if v := q.Get("is_remote"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("is_remote must be a boolean")
		}
		f.IsRemote = &b
	}
	if v := q.Get("min_salary"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || s < 0 {
			return f, fmt.Errorf("min_salary must be a non-negative number")
		}
		// Zero means no minimum.
		if s > 0 {
			f.MinSalary = &s
		}
	}

	var err error
	if f.Days, err = intParam(q.Get("days"), 0, 0); err != nil {
		return f, fmt.Errorf("days %w", err)
	}
	if f.Skip, err = intParam(q.Get("skip"), 0, 0); err != nil {
		return f, fmt.Errorf("skip %w", err)
	}
	if f.Limit, err = intParam(q.Get("limit"), store.DefaultLimit, 1); err != nil {
		return f, fmt.Errorf("limit %w", err)
	}
	f.Limit = min(f.Limit, store.MaxLimit)

	return f, nil
}

func intParam(v string, def, minimum int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("must be an integer >= %d", minimum)
	}
	return n, nil
}

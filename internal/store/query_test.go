package store_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/store"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func TestBuildJobQuery_NoFilters(t *testing.T) {
	q, args := store.BuildJobQuery(model.JobFilter{}, now)

	assert.NotContains(t, q, "WHERE")
	assert.True(t, strings.HasSuffix(q, "ORDER BY posted_date DESC NULLS LAST, id LIMIT $1 OFFSET $2"), q)
	assert.Equal(t, []any{store.DefaultLimit, 0}, args)
}

func TestBuildJobQuery_AllFilters(t *testing.T) {
	remote := true
	salary := 50000.0
	q, args := store.BuildJobQuery(model.JobFilter{
		Keyword:   "python",
		Company:   "Acme",
		Location:  "Burlington",
		IsRemote:  &remote,
		MinSalary: &salary,
		Tag:       "sql",
		Days:      7,
		Skip:      20,
		Limit:     10,
	}, now)

	assert.Contains(t, q, "(title ILIKE $1 OR description ILIKE $1)")
	assert.Contains(t, q, "company ILIKE $2")
	assert.Contains(t, q, "location ILIKE $3")
	assert.Contains(t, q, "is_remote = $4")
	assert.Contains(t, q, "salary_min >= $5")
	assert.Contains(t, q, "WHERE t.name = $6")
	assert.Contains(t, q, "posted_date >= $7")
	assert.Contains(t, q, "LIMIT $8 OFFSET $9")

	assert.Equal(t, []any{
		"%python%", "%Acme%", "%Burlington%", true, 50000.0, "sql",
		time.Date(2024, 3, 3, 15, 0, 0, 0, time.UTC),
		10, 20,
	}, args)
}

func TestBuildJobQuery_Pagination(t *testing.T) {
	cases := []struct {
		name        string
		skip, limit int
		wantLimit   int
		wantSkip    int
	}{
		{"defaults", 0, 0, 100, 0},
		{"explicit", 5, 25, 25, 5},
		{"capped", 0, 10000, store.MaxLimit, 0},
		{"negative skip", -3, 10, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, args := store.BuildJobQuery(model.JobFilter{Skip: tc.skip, Limit: tc.limit}, now)
			assert.Equal(t, []any{tc.wantLimit, tc.wantSkip}, args)
		})
	}
}

func TestBuildJobQuery_RemoteFalseIsAFilter(t *testing.T) {
	onsite := false
	q, args := store.BuildJobQuery(model.JobFilter{IsRemote: &onsite}, now)
	assert.Contains(t, q, "WHERE is_remote = $1")
	assert.Equal(t, false, args[0])
}

func TestBuildJobQuery_ZeroMinSalaryIsIgnored(t *testing.T) {
	zero := 0.0
	q, args := store.BuildJobQuery(model.JobFilter{MinSalary: &zero}, now)
	assert.NotContains(t, q, "salary_min")
	assert.Equal(t, []any{store.DefaultLimit, 0}, args)
}

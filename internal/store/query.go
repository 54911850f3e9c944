package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jbelley18/VermontJobs/internal/model"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// BuildJobQuery renders the SELECT for f with positional arguments. now
// anchors the days filter.
func BuildJobQuery(f model.JobFilter, now time.Time) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Keyword != "" {
		p := arg("%" + f.Keyword + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}
	if f.Company != "" {
		where = append(where, "company ILIKE "+arg("%"+f.Company+"%"))
	}
	if f.Location != "" {
		where = append(where, "location ILIKE "+arg("%"+f.Location+"%"))
	}
	if f.IsRemote != nil {
		where = append(where, "is_remote = "+arg(*f.IsRemote))
	}
	if f.MinSalary != nil && *f.MinSalary > 0 {
		where = append(where, "salary_min >= "+arg(*f.MinSalary))
	}
	if f.Tag != "" {
		where = append(where, "id IN (SELECT jt.job_id FROM job_tags jt JOIN tags t ON t.id = jt.tag_id WHERE t.name = "+
			arg(f.Tag)+")")
	}
	if f.Days > 0 {
		where = append(where, "posted_date >= "+arg(now.UTC().AddDate(0, 0, -f.Days)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + jobColumns + " FROM jobs")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY posted_date DESC NULLS LAST, id")

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)
	skip := max(f.Skip, 0)
	b.WriteString(" LIMIT " + arg(limit) + " OFFSET " + arg(skip))

	return b.String(), args
}

// Package store persists jobs and tags in PostgreSQL. It serves both the
// ingestion worker (lookups and idempotent inserts) and the query API.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/scraper"
)

var _ scraper.Store = (*Store)(nil)

// ErrNotFound is returned when a job id does not exist.
var ErrNotFound = errors.New("job not found")

const jobColumns = `id, title, company, location, description, url, source, is_remote,
	salary_min, salary_max, posted_date, created_at, updated_at`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Store is the pgx-backed job store.
type Store struct {
	pool DB
	now  func() time.Time
}

// New returns a Store using pool, normally a *pgxpool.Pool.
func New(pool DB) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ─── Ingestion ───────────────────────────────────────────────────────────────

// FindJobByURL returns the stored job for url, or nil when there is none.
func (s *Store) FindJobByURL(ctx context.Context, url string) (*model.JobListing, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = $1`, url)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findJobByURL: %w", err)
	}
	return job, nil
}

// InsertJob stores job unless its URL is already present. On conflict the
// existing row is returned with created == false and nothing is modified.
func (s *Store) InsertJob(ctx context.Context, job *model.JobListing) (*model.JobListing, bool, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, location, description, url, source, is_remote,
		                   salary_min, salary_max, posted_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (url) DO NOTHING
		 RETURNING `+jobColumns,
		job.Title, job.Company, job.Location, job.Description, job.URL, job.Source, job.IsRemote,
		job.SalaryMin, job.SalaryMax, job.PostedDate,
	)
	stored, err := scanJob(row)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("insertJob: %w", err)
	}

	existing, err := s.FindJobByURL(ctx, job.URL)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("insertJob: conflict on %s but no row found", job.URL)
	}
	return existing, false, nil
}

// FindTagByName returns the tag called name, or nil.
func (s *Store) FindTagByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM tags WHERE name = $1`, name).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("findTagByName: %w", err)
	}
	return &t, nil
}

// InsertTag creates the tag or returns the existing one with that name.
func (s *Store) InsertTag(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tags (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		name,
	).Scan(&t.ID, &t.Name)
	if err != nil {
		return nil, fmt.Errorf("insertTag: %w", err)
	}
	return &t, nil
}

// LinkJobTag associates a job with a tag; an existing link is left alone.
func (s *Store) LinkJobTag(ctx context.Context, jobID, tagID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_tags (job_id, tag_id) VALUES ($1, $2)
		 ON CONFLICT (job_id, tag_id) DO NOTHING`,
		jobID, tagID,
	)
	if err != nil {
		return fmt.Errorf("linkJobTag: %w", err)
	}
	return nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// ListJobs returns one page of jobs matching f, newest posting first, with
// their tags.
func (s *Store) ListJobs(ctx context.Context, f model.JobFilter) ([]model.JobListing, error) {
	query, args := BuildJobQuery(f, s.now())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.JobListing, error) {
		job, err := scanJob(row)
		if err != nil {
			return model.JobListing{}, err
		}
		return *job, nil
	})
	if err != nil {
		return nil, fmt.Errorf("listJobs scan: %w", err)
	}

	if err := s.attachTags(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns a single job with its tags, or ErrNotFound.
func (s *Store) GetJob(ctx context.Context, id int64) (*model.JobListing, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getJob: %w", err)
	}

	jobs := []model.JobListing{*job}
	if err := s.attachTags(ctx, jobs); err != nil {
		return nil, err
	}
	return &jobs[0], nil
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listTags query: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Tag])
	if err != nil {
		return nil, fmt.Errorf("listTags scan: %w", err)
	}
	return tags, nil
}

// Stats computes the summary served by GET /stats.
func (s *Store) Stats(ctx context.Context) (*model.Stats, error) {
	weekAgo := s.now().UTC().AddDate(0, 0, -7)

	st := &model.Stats{}
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_remote),
		        COUNT(*) FILTER (WHERE posted_date >= $1)
		 FROM jobs`,
		weekAgo,
	).Scan(&st.TotalJobs, &st.RemoteJobs, &st.RecentJobs)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}
	st.OnsiteJobs = st.TotalJobs - st.RemoteJobs

	if st.JobsBySource, err = s.countBy(ctx,
		`SELECT source, COUNT(id) FROM jobs GROUP BY source`); err != nil {
		return nil, fmt.Errorf("stats by source: %w", err)
	}
	if st.TopCompanies, err = s.countBy(ctx,
		`SELECT company, COUNT(id) FROM jobs GROUP BY company
		 ORDER BY COUNT(id) DESC, company LIMIT 10`); err != nil {
		return nil, fmt.Errorf("stats top companies: %w", err)
	}
	if st.PopularTags, err = s.countBy(ctx,
		`SELECT t.name, COUNT(jt.job_id) FROM tags t
		 JOIN job_tags jt ON jt.tag_id = t.id
		 GROUP BY t.name ORDER BY COUNT(jt.job_id) DESC, t.name LIMIT 10`); err != nil {
		return nil, fmt.Errorf("stats popular tags: %w", err)
	}

	return st, nil
}

func (s *Store) countBy(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// attachTags loads the tags of every job in one query.
func (s *Store) attachTags(ctx context.Context, jobs []model.JobListing) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]int64, len(jobs))
	index := make(map[int64]int, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
		index[jobs[i].ID] = i
		jobs[i].Tags = []model.Tag{}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT jt.job_id, t.id, t.name
		 FROM job_tags jt JOIN tags t ON t.id = jt.tag_id
		 WHERE jt.job_id = ANY($1)
		 ORDER BY t.name`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("attachTags query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var jobID int64
		var t model.Tag
		if err := rows.Scan(&jobID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("attachTags scan: %w", err)
		}
		if i, ok := index[jobID]; ok {
			jobs[i].Tags = append(jobs[i].Tags, t)
		}
	}
	return rows.Err()
}

func scanJob(row pgx.Row) (*model.JobListing, error) {
	var j model.JobListing
	err := row.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.URL, &j.Source, &j.IsRemote,
		&j.SalaryMin, &j.SalaryMax, &j.PostedDate, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Tags = []model.Tag{}
	return &j, nil
}

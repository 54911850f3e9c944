package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one named, idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

// Migrations is the ordered schema for jobs, tags and job_tags. The unique
// constraints on jobs.url, tags.name and (job_id, tag_id) are what keep
// concurrent ingestion runs from writing duplicates.
var Migrations = []Migration{
	{
		Name: "create_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS jobs (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			company     TEXT NOT NULL,
			location    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			salary_min  DOUBLE PRECISION,
			salary_max  DOUBLE PRECISION,
			url         TEXT NOT NULL UNIQUE CHECK (url <> ''),
			posted_date TIMESTAMPTZ,
			source      TEXT NOT NULL,
			is_remote   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "index_jobs",
		SQL: `CREATE INDEX IF NOT EXISTS jobs_title_idx ON jobs (title);
		      CREATE INDEX IF NOT EXISTS jobs_company_idx ON jobs (company);
		      CREATE INDEX IF NOT EXISTS jobs_location_idx ON jobs (location);
		      CREATE INDEX IF NOT EXISTS jobs_source_idx ON jobs (source);
		      CREATE INDEX IF NOT EXISTS jobs_posted_date_idx ON jobs (posted_date DESC)`,
	},
	{
		Name: "create_tags",
		SQL: `CREATE TABLE IF NOT EXISTS tags (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
	},
	{
		Name: "create_job_tags",
		SQL: `CREATE TABLE IF NOT EXISTS job_tags (
			job_id BIGINT NOT NULL REFERENCES jobs (id) ON DELETE CASCADE,
			tag_id BIGINT NOT NULL REFERENCES tags (id) ON DELETE CASCADE,
			PRIMARY KEY (job_id, tag_id)
		)`,
	},
}

// Migrate applies every migration in order on startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")
	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		slog.Info("Migration completed", "name", m.Name)
	}
	return nil
}

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/store"
)

// ── Helpers ───────────────────────────────────────────────────────────────

var jobCols = []string{
	"id", "title", "company", "location", "description", "url", "source", "is_remote",
	"salary_min", "salary_max", "posted_date", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*store.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return store.New(mock), mock
}

func jobRows(id int64, title, url string) *pgxmock.Rows {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(jobCols).AddRow(
		id, title, "Acme", "Burlington, VT", "Python and SQL.", url, "indeed", false,
		nil, nil, nil, created, created,
	)
}

func newListing(url string) *model.JobListing {
	return &model.JobListing{
		Title:       "Python Developer",
		Company:     "Acme",
		Location:    "Burlington, VT",
		Description: "Python and SQL.",
		URL:         url,
		Source:      "indeed",
	}
}

func insertArgs(url string) []any {
	a := pgxmock.AnyArg()
	return []any{a, a, a, a, url, a, a, a, a, a}
}

// ── InsertJob ──────────────────────────────────────────────────────────────

func TestInsertJob_NewURLIsCreated(t *testing.T) {
	s, mock := newMockStore(t)
	url := "https://example.com/viewjob?jk=1"

	mock.ExpectQuery("(?s)INSERT INTO jobs .+ ON CONFLICT \\(url\\) DO NOTHING").
		WithArgs(insertArgs(url)...).
		WillReturnRows(jobRows(1, "Python Developer", url))

	stored, created, err := s.InsertJob(context.Background(), newListing(url))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), stored.ID)
	assert.Equal(t, url, stored.URL)
	assert.NotNil(t, stored.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertJob_ConflictReturnsExistingRow(t *testing.T) {
	s, mock := newMockStore(t)
	url := "https://example.com/viewjob?jk=dup"

	mock.ExpectQuery("INSERT INTO jobs").
		WithArgs(insertArgs(url)...).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM jobs WHERE url = \\$1").
		WithArgs(url).
		WillReturnRows(jobRows(42, "Existing Job", url))

	stored, created, err := s.InsertJob(context.Background(), newListing(url))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(42), stored.ID)
	assert.Equal(t, "Existing Job", stored.Title, "the stored row wins over the new listing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertJob_ConflictWithoutRowIsAnError(t *testing.T) {
	s, mock := newMockStore(t)
	url := "https://example.com/viewjob?jk=ghost"

	mock.ExpectQuery("INSERT INTO jobs").
		WithArgs(insertArgs(url)...).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("FROM jobs WHERE url = \\$1").
		WithArgs(url).
		WillReturnError(pgx.ErrNoRows)

	stored, created, err := s.InsertJob(context.Background(), newListing(url))
	require.Error(t, err)
	assert.ErrorContains(t, err, "no row found")
	assert.Nil(t, stored)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertJob_DatabaseError(t *testing.T) {
	s, mock := newMockStore(t)
	url := "https://example.com/viewjob?jk=2"

	mock.ExpectQuery("INSERT INTO jobs").
		WithArgs(insertArgs(url)...).
		WillReturnError(errors.New("connection reset"))

	_, created, err := s.InsertJob(context.Background(), newListing(url))
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet(), "no fallback lookup after a real failure")
}

// ── Lookups ────────────────────────────────────────────────────────────────

func TestFindJobByURL_AbsentIsNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM jobs WHERE url = \\$1").
		WithArgs("https://example.com/none").
		WillReturnError(pgx.ErrNoRows)

	job, err := s.FindJobByURL(context.Background(), "https://example.com/none")
	assert.NoError(t, err)
	assert.Nil(t, job)
}

func TestFindJobByURL_Found(t *testing.T) {
	s, mock := newMockStore(t)
	url := "https://example.com/viewjob?jk=3"

	mock.ExpectQuery("FROM jobs WHERE url = \\$1").
		WithArgs(url).
		WillReturnRows(jobRows(3, "Data Analyst", url))

	job, err := s.FindJobByURL(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "Data Analyst", job.Title)
	assert.Nil(t, job.SalaryMin)
	assert.Nil(t, job.PostedDate)
}

func TestFindTagByName_AbsentIsNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM tags WHERE name = \\$1").
		WithArgs("rust").
		WillReturnError(pgx.ErrNoRows)

	tag, err := s.FindTagByName(context.Background(), "rust")
	assert.NoError(t, err)
	assert.Nil(t, tag)
}

func TestFindTagByName_DatabaseError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM tags WHERE name = \\$1").
		WithArgs("sql").
		WillReturnError(errors.New("timeout"))

	_, err := s.FindTagByName(context.Background(), "sql")
	assert.ErrorContains(t, err, "timeout")
}

func TestGetJob_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM jobs WHERE id = \\$1").
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetJob(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// ── Tags ───────────────────────────────────────────────────────────────────

func TestInsertTag_ExistingNameReturnsStoredID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("(?s)INSERT INTO tags .+ ON CONFLICT \\(name\\)").
		WithArgs("python").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(7), "python"))

	tag, err := s.InsertTag(context.Background(), "python")
	require.NoError(t, err)
	assert.Equal(t, int64(7), tag.ID)
	assert.Equal(t, "python", tag.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkJobTag_ExistingLinkIsNoop(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("(?s)INSERT INTO job_tags .+ ON CONFLICT \\(job_id, tag_id\\) DO NOTHING").
		WithArgs(int64(1), int64(7)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	assert.NoError(t, s.LinkJobTag(context.Background(), 1, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkJobTag_DatabaseError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO job_tags").
		WithArgs(int64(1), int64(7)).
		WillReturnError(errors.New("foreign key violation"))

	assert.ErrorContains(t, s.LinkJobTag(context.Background(), 1, 7), "foreign key violation")
}

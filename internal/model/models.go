// Package model defines shared data structures for the jobs service.
package model

import "time"

// JobListing is a canonical job record. URL is the identity: two listings
// with the same URL are the same job, whatever the source reported.
type JobListing struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	IsRemote    bool       `json:"is_remote"`
	SalaryMin   *float64   `json:"salary_min"`
	SalaryMax   *float64   `json:"salary_max"`
	PostedDate  *time.Time `json:"posted_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Tags        []Tag      `json:"tags"`
}

// Tag is a case-normalised keyword attached to jobs through job_tags.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RawListing is what a source adapter yields for one search result entry.
// Nothing in it is validated; URL is nil when the entry carried no
// detail identifier.
type RawListing struct {
	Title       string
	Company     string
	Location    string
	URL         *string
	Source      string
	IsRemote    bool
	SalaryMin   *float64
	SalaryMax   *float64
	PostedDate  *time.Time
	Description string
}

// Details is the detail-page enrichment for a single listing.
type Details struct {
	Description string `json:"description"`
}

// JobFilter mirrors the query parameters accepted by GET /jobs.
type JobFilter struct {
	Keyword   string
	Company   string
	Location  string
	IsRemote  *bool
	MinSalary *float64
	Tag       string
	Days      int
	Skip      int
	Limit     int
}

// Stats is the summary returned by GET /stats.
type Stats struct {
	TotalJobs    int64            `json:"total_jobs"`
	JobsBySource map[string]int64 `json:"jobs_by_source"`
	RemoteJobs   int64            `json:"remote_jobs"`
	OnsiteJobs   int64            `json:"onsite_jobs"`
	RecentJobs   int64            `json:"recent_jobs"`
	TopCompanies map[string]int64 `json:"top_companies"`
	PopularTags  map[string]int64 `json:"popular_tags"`
}

// RunStatus values stored on a Run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is the handle returned when an ingestion run is triggered.
type Run struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Searched   int        `json:"searched"`
	Inserted   int        `json:"inserted"`
	Skipped    int        `json:"skipped"`
	NoURL      int        `json:"no_url"`
	Tagged     int        `json:"tagged"`
	Error      string     `json:"error,omitempty"`
}

package scraper

import (
	"context"
	"fmt"
	"log"

	"github.com/Jbelley18/VermontJobs/internal/model"
)

// Store is the persistence the Worker needs. Implementations must enforce
// URL uniqueness themselves: InsertJob on an existing URL returns the stored
// job with created == false instead of failing, and LinkJobTag is a no-op
// when the link already exists.
type Store interface {
	FindJobByURL(ctx context.Context, url string) (*model.JobListing, error)
	InsertJob(ctx context.Context, job *model.JobListing) (stored *model.JobListing, created bool, err error)
	FindTagByName(ctx context.Context, name string) (*model.Tag, error)
	InsertTag(ctx context.Context, name string) (*model.Tag, error)
	LinkJobTag(ctx context.Context, jobID, tagID int64) error
}

// RunResult counts what one ingestion run did.
type RunResult struct {
	Searched int // listings returned by sources
	Inserted int // new jobs stored
	Skipped  int // listings whose URL was already stored
	NoURL    int // listings without a detail URL
	Tagged   int // job–tag links created for new jobs
}

// Worker runs the full ingestion cycle: keywords × sources, dedup by URL,
// detail enrichment, tagging and per-record inserts.
type Worker struct {
	store      Store
	sources    []Source
	keywords   []string
	location   string
	vocabulary []string
}

// NewWorker constructs a Worker. keywords and sources are visited in order.
func NewWorker(store Store, sources []Source, keywords []string, location string, vocabulary []string) *Worker {
	return &Worker{
		store:      store,
		sources:    sources,
		keywords:   keywords,
		location:   location,
		vocabulary: vocabulary,
	}
}

// Run executes one ingestion cycle. Source failures are absorbed inside the
// sources; only store errors are returned, and they abort the remainder of
// the run. Everything written before the error stays committed.
func (w *Worker) Run(ctx context.Context) (RunResult, error) {
	log.Printf("[worker] Starting ingestion: keywords=%v sources=%d location=%q",
		w.keywords, len(w.sources), w.location)

	var res RunResult
	for _, keyword := range w.keywords {
		for _, src := range w.sources {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if err := w.ingest(ctx, src, keyword, &res); err != nil {
				log.Printf("[worker] Store error on (%s, %q): %v — aborting run", src.Name(), keyword, err)
				return res, err
			}
		}
	}

	log.Printf("[worker] Ingestion done — searched=%d inserted=%d skipped=%d no_url=%d tagged=%d",
		res.Searched, res.Inserted, res.Skipped, res.NoURL, res.Tagged)
	return res, nil
}

func (w *Worker) ingest(ctx context.Context, src Source, keyword string, res *RunResult) error {
	listings := src.Search(ctx, keyword, w.location)
	res.Searched += len(listings)
	if len(listings) == 0 {
		return nil
	}

	for _, raw := range listings {
		if raw.URL == nil || *raw.URL == "" {
			res.NoURL++
			continue
		}

		existing, err := w.store.FindJobByURL(ctx, *raw.URL)
		if err != nil {
			return fmt.Errorf("find job %s: %w", *raw.URL, err)
		}
		if existing != nil {
			res.Skipped++
			continue
		}

		raw.Description = src.Details(ctx, *raw.URL).Description

		job, created, err := w.store.InsertJob(ctx, newJob(raw, src.Name()))
		if err != nil {
			return fmt.Errorf("insert job %s: %w", *raw.URL, err)
		}
		if !created {
			// Another run stored this URL between our lookup and insert.
			res.Skipped++
			continue
		}
		res.Inserted++

		n, err := w.tag(ctx, job)
		if err != nil {
			return err
		}
		res.Tagged += n
	}
	return nil
}

// tag derives tags for a freshly inserted job and links them.
func (w *Worker) tag(ctx context.Context, job *model.JobListing) (int, error) {
	names := ExtractTags(job.Title, job.Description, w.vocabulary)
	for _, name := range names {
		tag, err := w.store.FindTagByName(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("find tag %q: %w", name, err)
		}
		if tag == nil {
			if tag, err = w.store.InsertTag(ctx, name); err != nil {
				return 0, fmt.Errorf("insert tag %q: %w", name, err)
			}
		}
		if err := w.store.LinkJobTag(ctx, job.ID, tag.ID); err != nil {
			return 0, fmt.Errorf("link job %d to tag %q: %w", job.ID, name, err)
		}
		job.Tags = append(job.Tags, *tag)
	}
	return len(names), nil
}

func newJob(raw model.RawListing, source string) *model.JobListing {
	if raw.Source != "" {
		source = raw.Source
	}
	return &model.JobListing{
		Title:       raw.Title,
		Company:     raw.Company,
		Location:    raw.Location,
		Description: raw.Description,
		URL:         *raw.URL,
		Source:      source,
		IsRemote:    raw.IsRemote,
		SalaryMin:   raw.SalaryMin,
		SalaryMax:   raw.SalaryMax,
		PostedDate:  raw.PostedDate,
	}
}

// Package scraper implements job listing fetching, tagging and ingestion.
package scraper

import (
	"context"

	"github.com/Jbelley18/VermontJobs/internal/model"
)

// Source is one external job board.
//
// Implementations absorb their own network and markup failures: Search
// returns an empty slice when the listing page cannot be fetched, and Details
// returns a fallback description. Callers therefore cannot tell "no jobs"
// from "fetch failed" at this layer.
type Source interface {
	Name() string
	Search(ctx context.Context, keyword, location string) []model.RawListing
	Details(ctx context.Context, url string) model.Details
}

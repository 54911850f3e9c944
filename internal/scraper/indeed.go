package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/Jbelley18/VermontJobs/internal/model"
	"github.com/Jbelley18/VermontJobs/internal/normalize"
)

const (
	indeedSourceName = "indeed"
	httpTimeout      = 15 * time.Second

	unknownTitle    = "Unknown Title"
	unknownCompany  = "Unknown Company"
	unknownLocation = "Unknown Location"

	// DescriptionUnavailable is used when the detail page has no description block.
	DescriptionUnavailable = "No description available."
	// DescriptionFetchFailed is used when the detail page could not be fetched.
	DescriptionFetchFailed = "Failed to retrieve job description."
)

// Selectors for the listing and detail pages. They track the source's
// markup and must be updated when it changes.
const (
	selListing     = "div.job_seen_beacon"
	selTitle       = "h2.jobTitle span"
	selCompany     = "span.companyName"
	selLocation    = "div.companyLocation"
	selSalary      = "span.salary-snippet"
	selDate        = "span.date"
	selDescription = "div#jobDescriptionText"
	attrListingID  = "data-jk"
)

// IndeedOptions configures an IndeedSource.
type IndeedOptions struct {
	Name      string            // defaults to "indeed"
	BaseURL   string            // listing search endpoint
	DetailURL string            // detail page endpoint; the listing id goes in ?jk=
	Headers   map[string]string // sent with every request
	Throttle  time.Duration     // fixed delay before every detail request
	Timeout   time.Duration     // per-request timeout, defaults to 15s
}

// IndeedSource scrapes an Indeed-style HTML job board. It holds only
// read-only connection settings and is safe to share between runs.
type IndeedSource struct {
	name      string
	baseURL   string
	detailURL string
	headers   map[string]string
	throttle  time.Duration
	client    *http.Client
}

// NewIndeedSource constructs a source with its own HTTP client.
func NewIndeedSource(opts IndeedOptions) *IndeedSource {
	name := opts.Name
	if name == "" {
		name = indeedSourceName
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = httpTimeout
	}
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &IndeedSource{
		name:      name,
		baseURL:   opts.BaseURL,
		detailURL: opts.DetailURL,
		headers:   headers,
		throttle:  opts.Throttle,
		client:    &http.Client{Timeout: timeout},
	}
}

// Name returns the source identifier stored on every job it yields.
func (s *IndeedSource) Name() string { return s.name }

// Search fetches the newest listings for keyword in location.
func (s *IndeedSource) Search(ctx context.Context, keyword, location string) []model.RawListing {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("l", location)
	params.Set("sort", "date")

	doc, err := s.fetch(ctx, s.baseURL+"?"+params.Encode())
	if err != nil {
		log.Printf("[%s] Error fetching listings for %q: %v", s.name, keyword, err)
		return nil
	}

	listings := make([]model.RawListing, 0)
	doc.Find(selListing).Each(func(i int, entry *goquery.Selection) {
		listing, err := s.parseEntry(entry)
		if err != nil {
			log.Printf("[%s] Error parsing listing %d for %q: %v — skipping", s.name, i, keyword, err)
			return
		}
		listings = append(listings, listing)
	})

	log.Printf("[%s] %q in %q: %d listing(s)", s.name, keyword, location, len(listings))
	return listings
}

// Details fetches the detail page at jobURL and extracts its description.
// The configured throttle delay is always waited out first.
func (s *IndeedSource) Details(ctx context.Context, jobURL string) model.Details {
	if s.throttle > 0 {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Detail fetch for %s cancelled: %v", s.name, jobURL, ctx.Err())
			return model.Details{Description: DescriptionFetchFailed}
		case <-time.After(s.throttle):
		}
	}

	doc, err := s.fetch(ctx, jobURL)
	if err != nil {
		log.Printf("[%s] Error fetching job details %s: %v", s.name, jobURL, err)
		return model.Details{Description: DescriptionFetchFailed}
	}

	// A missing block and a whitespace-only block both yield the placeholder.
	desc := strings.TrimSpace(norm.NFC.String(doc.Find(selDescription).First().Text()))
	if desc == "" {
		desc = DescriptionUnavailable
	}
	return model.Details{Description: desc}
}

// parseEntry extracts one listing card. Missing fields fall back to
// placeholders; a panic inside the selector walk is turned into an error so
// that one malformed card never aborts the page.
func (s *IndeedSource) parseEntry(entry *goquery.Selection) (listing model.RawListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while parsing listing: %v", r)
		}
	}()

	locationText, hasLocation := textOf(entry, selLocation)
	salaryText, _ := textOf(entry, selSalary)
	dateText, _ := textOf(entry, selDate)

	listing = model.RawListing{
		Title:      orDefault(entry, selTitle, unknownTitle),
		Company:    orDefault(entry, selCompany, unknownCompany),
		Location:   orDefault(entry, selLocation, unknownLocation),
		URL:        s.listingURL(entry),
		Source:     s.name,
		IsRemote:   hasLocation && strings.Contains(strings.ToLower(locationText), "remote"),
		PostedDate: normalize.ParsePostedDate(dateText),
	}

	salary := normalize.ParseSalary(salaryText)
	listing.SalaryMin = salary.Min
	listing.SalaryMax = salary.Max

	return listing, nil
}

// listingURL builds the canonical detail URL from the listing id, or nil
// when the card has none.
func (s *IndeedSource) listingURL(entry *goquery.Selection) *string {
	id, ok := entry.Attr(attrListingID)
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return nil
	}
	u := s.detailURL + "?" + url.Values{"jk": {id}}.Encode()
	return &u
}

func (s *IndeedSource) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %d", s.name, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// textOf returns the cleaned text of the first element matching sel.
func textOf(entry *goquery.Selection, sel string) (string, bool) {
	found := entry.Find(sel).First()
	if found.Length() == 0 {
		return "", false
	}
	return cleanText(found.Text()), true
}

func orDefault(entry *goquery.Selection, sel, def string) string {
	if text, ok := textOf(entry, sel); ok && text != "" {
		return text
	}
	return def
}

// cleanText NFC-normalises s and collapses runs of whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

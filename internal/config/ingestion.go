package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed sources.schema.json
var sourcesSchema string

// Ingestion is the scraping configuration read from the sources file.
type Ingestion struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Location string   `yaml:"location" json:"location"`
	Tags     []string `yaml:"tags" json:"tags"`
	Sources  []Source `yaml:"sources" json:"sources"`
}

// Source holds the network settings of one source adapter.
type Source struct {
	Name       string            `yaml:"name" json:"name"`
	Enabled    bool              `yaml:"enabled" json:"enabled"`
	BaseURL    string            `yaml:"base_url" json:"base_url"`
	DetailURL  string            `yaml:"detail_url" json:"detail_url"`
	Headers    map[string]string `yaml:"headers" json:"headers,omitempty"`
	ThrottleMS int               `yaml:"throttle_ms" json:"throttle_ms"`
}

// Throttle is the fixed delay applied before each detail-page request.
func (s Source) Throttle() time.Duration {
	return time.Duration(s.ThrottleMS) * time.Millisecond
}

// DefaultIngestion returns the keyword list, tag vocabulary and source used
// when no sources file is present.
func DefaultIngestion() *Ingestion {
	return &Ingestion{
		Keywords: []string{"software developer", "data analyst", "web developer", "engineer"},
		Location: "Vermont",
		Tags:     []string{"python", "javascript", "react", "sql", "remote", "junior", "senior"},
		Sources: []Source{{
			Name:      "indeed",
			Enabled:   true,
			BaseURL:   "https://www.indeed.com/jobs",
			DetailURL: "https://www.indeed.com/viewjob",
			Headers: map[string]string{
				"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
				"Accept-Language": "en-US,en;q=0.9",
			},
			ThrottleMS: 1000,
		}},
	}
}

// LoadIngestion reads and validates the YAML sources file at path.
// A missing file is not an error: the defaults are returned instead.
func LoadIngestion(path string) (*Ingestion, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("[config] %s not found — using built-in sources", path)
		return DefaultIngestion(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseIngestion(data)
}

// ParseIngestion decodes a sources document, validates it against the
// embedded schema and fills defaults.
func ParseIngestion(data []byte) (*Ingestion, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var ing Ingestion
	if err := yaml.Unmarshal(data, &ing); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}

	if ing.Location == "" {
		ing.Location = "Vermont"
	}
	for i, t := range ing.Tags {
		ing.Tags[i] = strings.ToLower(strings.TrimSpace(t))
	}
	return &ing, nil
}

// EnabledSources returns the sources with enabled: true, in file order.
func (i *Ingestion) EnabledSources() []Source {
	out := make([]Source, 0, len(i.Sources))
	for _, s := range i.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func validate(doc map[string]any) error {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sourcesSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate sources: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("sources file failed schema validation: %s", strings.Join(msgs, "; "))
}

package scraper

import (
	"strings"

	"golang.org/x/text/cases"
)

// ExtractTags returns the vocabulary entries that occur, case-insensitively,
// anywhere in title or description. Matching is plain substring matching:
// "java" also matches inside "javascript".
//
// Tag names are returned lower-cased, deduplicated, in vocabulary order.
func ExtractTags(title, description string, vocabulary []string) []string {
	if len(vocabulary) == 0 {
		return nil
	}

	fold := cases.Fold()
	t := fold.String(title)
	d := fold.String(description)

	seen := make(map[string]bool, len(vocabulary))
	var tags []string
	for _, word := range vocabulary {
		name := strings.ToLower(strings.TrimSpace(word))
		if name == "" || seen[name] {
			continue
		}
		needle := fold.String(name)
		if strings.Contains(t, needle) || strings.Contains(d, needle) {
			seen[name] = true
			tags = append(tags, name)
		}
	}
	return tags
}

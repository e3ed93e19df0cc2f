package query

import (
	"fmt"
	"strings"

	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/labels"
)

// MatchMode selects how a keyword query is compared with labels.
type MatchMode string

const (
	// MatchExact compares whole labels, ignoring case.
	MatchExact MatchMode = "exact"
	// MatchSubstring looks for the query anywhere in a label, ignoring case.
	MatchSubstring MatchMode = "substring"
)

func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "substring", "contains", "partial":
		return MatchSubstring, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Match reports whether any label in set matches query under mode. An empty
// query matches nothing.
func Match(set labels.Set, query string, mode MatchMode) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	if mode != MatchSubstring {
		return set.Contains(query)
	}
	found := false
	set.Each(func(label string) {
		if !found && labels.ContainsFold(label, query) {
			found = true
		}
	})
	return found
}

// Filter combines a category selection and a keyword query. Both are
// optional; set predicates are ANDed.
type Filter struct {
	CategorySource dataset.Source
	Categories     []string
	KeywordSource  dataset.Source
	Keyword        string
	Mode           MatchMode
}

func (f Filter) categories() []string {
	out := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether the filter lets every record through.
func (f Filter) Empty() bool {
	return len(f.categories()) == 0 && strings.TrimSpace(f.Keyword) == ""
}

// Matches evaluates the filter against one record.
func (f Filter) Matches(r dataset.Record) bool {
	if cats := f.categories(); len(cats) > 0 {
		if !Resolve(r, f.CategorySource).Intersects(cats) {
			return false
		}
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		if !Match(Resolve(r, f.KeywordSource), kw, f.Mode) {
			return false
		}
	}
	return true
}

// Apply returns the records passing f in collection order. An empty filter
// returns a copy of the whole collection.
func Apply(records []dataset.Record, f Filter) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

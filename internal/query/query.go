// Package query answers topic and person questions over a loaded dataset.
// Every function is pure: results are derived from the records passed in and
// nothing is cached between calls.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/labels"
)

// Resolve returns the label set a record carries for a source selector.
// dataset.All merges every source on that record.
func Resolve(r dataset.Record, src dataset.Source) labels.Set {
	if src == dataset.All {
		return r.Merged()
	}
	return r.Labels(src)
}

// Build resolves src for each record, in record order.
func Build(records []dataset.Record, src dataset.Source) []labels.Set {
	out := make([]labels.Set, len(records))
	for i, r := range records {
		out[i] = Resolve(r, src)
	}
	return out
}

// FacetCounts counts, per label, the distinct records whose resolved set holds
// it. Labels are grouped case-insensitively and reported under the first
// casing met in record order. A non-empty substr keeps only labels containing
// it, ignoring case.
func FacetCounts(records []dataset.Record, src dataset.Source, substr string) map[string]int {
	substr = strings.TrimSpace(substr)
	display := make(map[string]string)
	counts := make(map[string]int)
	for _, r := range records {
		Resolve(r, src).Each(func(label string) {
			if !labels.ContainsFold(label, substr) {
				return
			}
			key := labels.Key(label)
			if _, ok := display[key]; !ok {
				display[key] = label
			}
			counts[display[key]]++
		})
	}
	return counts
}

// SortMode orders ranked facets.
type SortMode string

const (
	SortByCount SortMode = "count"
	SortAlpha   SortMode = "alpha"
)

func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "count", "by_count", "frequency":
		return SortByCount, nil
	case "alpha", "alphabetical", "name":
		return SortAlpha, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", s)
	}
}

// Facet is a label with its distinct-record count.
type Facet struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Rank turns counts into an ordered facet list. The order depends only on the
// contents of counts.
func Rank(counts map[string]int, mode SortMode) []Facet {
	out := make([]Facet, 0, len(counts))
	for label, n := range counts {
		out = append(out, Facet{Label: label, Count: n})
	}
	return RankFacets(out, mode)
}

// RankFacets sorts facets in place and returns them. Re-ranking an already
// ranked list leaves it unchanged.
func RankFacets(facets []Facet, mode SortMode) []Facet {
	sort.SliceStable(facets, func(i, j int) bool {
		a, b := facets[i], facets[j]
		if mode != SortAlpha && a.Count != b.Count {
			return a.Count > b.Count
		}
		return labels.Less(a.Label, b.Label)
	})
	return facets
}

// FilterSingletons drops facets counted at most once when enabled. Order is
// kept.
func FilterSingletons(ranked []Facet, enabled bool) []Facet {
	if !enabled {
		return ranked
	}
	out := make([]Facet, 0, len(ranked))
	for _, f := range ranked {
		if f.Count > 1 {
			out = append(out, f)
		}
	}
	return out
}

// FacetQuery is the input of the topic picker.
type FacetQuery struct {
	Source         dataset.Source
	Search         string
	Sort           SortMode
	HideSingletons bool
}

// Facets counts, ranks and optionally drops singletons in one pass.
func Facets(records []dataset.Record, q FacetQuery) []Facet {
	ranked := Rank(FacetCounts(records, q.Source, q.Search), q.Sort)
	return FilterSingletons(ranked, q.HideSingletons)
}

// MembersOf returns the records whose resolved set holds label (exact match,
// ignoring case), ordered by identity.
func MembersOf(records []dataset.Record, src dataset.Source, label string) []dataset.Record {
	var out []dataset.Record
	for _, r := range records {
		if Resolve(r, src).Contains(label) {
			out = append(out, r)
		}
	}
	sortByIdentity(out)
	return out
}

// FindRecord returns the first record whose identity equals identity exactly.
// Duplicate identities resolve to the earliest row.
func FindRecord(records []dataset.Record, identity string) (dataset.Record, bool) {
	for _, r := range records {
		if r.Identity == identity {
			return r, true
		}
	}
	return dataset.Record{}, false
}

// SearchRecords returns records whose identity contains substr ignoring case,
// ordered by identity. An empty substr returns every record.
func SearchRecords(records []dataset.Record, substr string) []dataset.Record {
	substr = strings.TrimSpace(substr)
	var out []dataset.Record
	for _, r := range records {
		if labels.ContainsFold(r.Identity, substr) {
			out = append(out, r)
		}
	}
	sortByIdentity(out)
	return out
}

func sortByIdentity(records []dataset.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return labels.Key(records[i].Identity) < labels.Key(records[j].Identity)
	})
}

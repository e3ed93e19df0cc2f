package dataset

import (
	"github.com/example/topicatlas/internal/labels"
)

// SourceLabels is one source's label set on a record.
type SourceLabels struct {
	Source Source
	Labels labels.Set
}

// Record is one person row.
type Record struct {
	Name       string
	Contact    string
	ExternalID string
	Identity   string
	Topics     []SourceLabels
}

func identityOf(name, contact string) string {
	if contact == "" {
		return name
	}
	return name + " <" + contact + ">"
}

// Labels returns the record's set for a single source; unknown sources give
// an empty set.
func (r Record) Labels(src Source) labels.Set {
	for _, t := range r.Topics {
		if t.Source == src {
			return t.Labels
		}
	}
	return labels.Set{}
}

// Merged unions the given sources in schema order. With no sources it unions
// every source on the record.
func (r Record) Merged(sources ...Source) labels.Set {
	if len(sources) == 0 {
		sets := make([]labels.Set, len(r.Topics))
		for i, t := range r.Topics {
			sets[i] = t.Labels
		}
		return labels.Union(sets...)
	}
	want := make(map[Source]struct{}, len(sources))
	for _, s := range sources {
		want[s] = struct{}{}
	}
	sets := make([]labels.Set, 0, len(sources))
	for _, t := range r.Topics {
		if _, ok := want[t.Source]; ok {
			sets = append(sets, t.Labels)
		}
	}
	return labels.Union(sets...)
}

// Dataset is a loaded, read-only record collection. Nothing mutates it after
// Load returns; queries derive new slices.
type Dataset struct {
	Path       string
	Encoding   string
	Schema     Schema
	Records    []Record
	Duplicates []string
	Skipped    int
}

func (d *Dataset) Sources() []SourceSpec {
	return d.Schema.Sources
}

// HasSource reports whether sel is All or a source the schema defines.
func (d *Dataset) HasSource(sel Source) bool {
	if sel == All {
		return true
	}
	for _, s := range d.Schema.Sources {
		if s.Name == sel {
			return true
		}
	}
	return false
}

// SourceOr returns name when the schema defines it and All otherwise.
func (d *Dataset) SourceOr(name Source) Source {
	if d.HasSource(name) {
		return name
	}
	return All
}

func (d *Dataset) Source(name Source) (SourceSpec, bool) {
	for _, s := range d.Schema.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceSpec{}, false
}

func (d *Dataset) ProfileURL(r Record) string {
	return d.Schema.ProfileURL(r.ExternalID)
}

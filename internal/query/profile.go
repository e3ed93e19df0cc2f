package query

import (
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/labels"
)

// SourceView is one source's labels on a person view.
type SourceView struct {
	Source  dataset.Source `json:"source"`
	Title   string         `json:"title"`
	Derived bool           `json:"derived"`
	Labels  labels.Set     `json:"labels"`
}

// Profile is the reciprocal person view: every source of the schema, empty
// ones included.
type Profile struct {
	Record     dataset.Record
	Sources    []SourceView
	Merged     labels.Set
	ProfileURL string
}

// Lookup finds identity in ds and assembles its person view.
func Lookup(ds *dataset.Dataset, identity string) (Profile, bool) {
	r, ok := FindRecord(ds.Records, identity)
	if !ok {
		return Profile{}, false
	}
	return ProfileOf(ds, r), true
}

// ProfileOf assembles the person view of a record already in hand.
func ProfileOf(ds *dataset.Dataset, r dataset.Record) Profile {
	p := Profile{
		Record:     r,
		Sources:    make([]SourceView, 0, len(ds.Sources())),
		Merged:     r.Merged(),
		ProfileURL: ds.ProfileURL(r),
	}
	for _, spec := range ds.Sources() {
		p.Sources = append(p.Sources, SourceView{
			Source:  spec.Name,
			Title:   spec.Title,
			Derived: spec.Derived,
			Labels:  r.Labels(spec.Name),
		})
	}
	return p
}

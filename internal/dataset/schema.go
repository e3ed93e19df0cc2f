package dataset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/topicatlas/internal/labels"
)

// Source names a provenance of labels, e.g. profile text or AI-derived
// keywords.
type Source string

// All selects the union of every source of a record.
const All Source = "all"

// SourceSpec binds a source to the column it is read from.
type SourceSpec struct {
	Name       Source `yaml:"name"`
	Title      string `yaml:"title"`
	Column     string `yaml:"column"`
	Delimiters string `yaml:"delimiters"`
	Derived    bool   `yaml:"derived"`
	Optional   bool   `yaml:"optional"`
}

// Schema describes which columns of the input file carry what.
type Schema struct {
	IdentityColumn   string       `yaml:"identity"`
	ContactColumn    string       `yaml:"contact"`
	ExternalIDColumn string       `yaml:"external_id"`
	ExternalURL      string       `yaml:"external_url"`
	ExternalPrefix   string       `yaml:"external_prefix"`
	DerivedNote      string       `yaml:"derived_note"`
	Sources          []SourceSpec `yaml:"sources"`
}

func DefaultSchema() Schema {
	return Schema{
		IdentityColumn:   "Name",
		ContactColumn:    "EMAIL",
		ExternalIDColumn: "OpenAlex_ID",
		ExternalURL:      "https://openalex.org/{id}",
		ExternalPrefix:   "A",
		DerivedNote:      "Matched using AI and may contain inaccuracies.",
		Sources: []SourceSpec{
			{Name: "profile", Title: "Profile", Column: "Profile Interests - Cleaned"},
			{Name: "public", Title: "Public Database (OpenAlex)", Column: "Publicly Available Interests", Derived: true},
			{Name: "category", Title: "AI Categories", Column: "AI Categories", Derived: true, Optional: true},
			{Name: "keyword", Title: "AI Keywords", Column: "AI Keywords", Derived: true, Optional: true},
		},
	}.withDefaults()
}

// LoadSchema reads a YAML schema file. Omitted fields keep their zero value;
// delimiters and titles are defaulted per source.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema file: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema file: %w", err)
	}
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

func (s Schema) withDefaults() Schema {
	out := s
	out.IdentityColumn = strings.TrimSpace(out.IdentityColumn)
	out.Sources = make([]SourceSpec, len(s.Sources))
	for i, src := range s.Sources {
		src.Name = Source(strings.ToLower(strings.TrimSpace(string(src.Name))))
		src.Column = strings.TrimSpace(src.Column)
		if src.Title == "" {
			src.Title = string(src.Name)
		}
		if src.Delimiters == "" {
			src.Delimiters = labels.DefaultDelimiters
		}
		out.Sources[i] = src
	}
	return out
}

func (s Schema) Validate() error {
	if s.IdentityColumn == "" {
		return fmt.Errorf("schema: identity column is required")
	}
	if len(s.Sources) == 0 {
		return fmt.Errorf("schema: at least one source is required")
	}
	seen := make(map[Source]struct{}, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("schema: source at index %d has empty name", i)
		}
		if src.Name == All {
			return fmt.Errorf("schema: source name %q is reserved", All)
		}
		if src.Column == "" {
			return fmt.Errorf("schema: source %q has empty column", src.Name)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("schema: duplicate source %q", src.Name)
		}
		seen[src.Name] = struct{}{}
	}
	return nil
}

// ProfileURL expands the external URL template for an id carrying the
// configured prefix.
func (s Schema) ProfileURL(externalID string) string {
	id := strings.TrimSpace(externalID)
	if id == "" || s.ExternalURL == "" {
		return ""
	}
	if s.ExternalPrefix != "" && !strings.HasPrefix(id, s.ExternalPrefix) {
		return ""
	}
	return strings.ReplaceAll(s.ExternalURL, "{id}", id)
}

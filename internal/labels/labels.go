package labels

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Key returns the case-folded comparison key for a label. Labels that share a
// key are the same topic.
func Key(in string) string {
	return cases.Fold().String(in)
}

func EqualFold(a, b string) bool {
	return Key(a) == Key(b)
}

// ContainsFold reports whether sub occurs in s ignoring case. An empty sub
// matches everything.
func ContainsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(Key(s), Key(sub))
}

// Less orders labels by folded key, falling back to the raw string so the
// order is total.
func Less(a, b string) bool {
	ka, kb := Key(a), Key(b)
	if ka != kb {
		return ka < kb
	}
	return a < b
}

// Set is a canonical label set: trimmed, non-empty, unique by folded key and
// sorted by Less. The zero value is an empty set.
type Set struct {
	items []string
	keys  map[string]struct{}
}

// Canonicalize builds a Set from raw labels. The first casing seen for a key
// is the one kept.
func Canonicalize(raw []string) Set {
	keys := make(map[string]struct{}, len(raw))
	items := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		k := Key(l)
		if _, ok := keys[k]; ok {
			continue
		}
		keys[k] = struct{}{}
		items = append(items, l)
	}
	sort.SliceStable(items, func(i, j int) bool { return Less(items[i], items[j]) })
	return Set{items: items, keys: keys}
}

func Of(raw ...string) Set {
	return Canonicalize(raw)
}

func (s Set) Len() int {
	return len(s.items)
}

func (s Set) Empty() bool {
	return len(s.items) == 0
}

// Strings returns a copy of the labels in display order.
func (s Set) Strings() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports case-insensitive exact membership.
func (s Set) Contains(label string) bool {
	if len(s.items) == 0 {
		return false
	}
	_, ok := s.keys[Key(strings.TrimSpace(label))]
	return ok
}

// Intersects reports whether any of the given labels is a member.
func (s Set) Intersects(labels []string) bool {
	for _, l := range labels {
		if s.Contains(l) {
			return true
		}
	}
	return false
}

// Each calls fn for every label in display order.
func (s Set) Each(fn func(label string)) {
	for _, l := range s.items {
		fn(l)
	}
}

// Union merges sets left to right; on a case clash the earliest set's casing
// wins.
func Union(sets ...Set) Set {
	n := 0
	for _, s := range sets {
		n += len(s.items)
	}
	raw := make([]string, 0, n)
	for _, s := range sets {
		raw = append(raw, s.items...)
	}
	return Canonicalize(raw)
}

// Join renders the set with sep between labels and nothing trailing.
func (s Set) Join(sep string) string {
	return strings.Join(s.items, sep)
}

func (s Set) String() string {
	return s.Join(", ")
}

func (s Set) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Canonicalize(raw)
	return nil
}

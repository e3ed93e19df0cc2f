package labels

import (
	"strings"
)

// DefaultDelimiters splits comma- or semicolon-separated cells.
const DefaultDelimiters = ",;"

type Kind int

const (
	KindMissing Kind = iota
	KindText
	KindSequence
)

// Value is a raw cell as read from a dataset: absent, a string, or an already
// structured list.
type Value struct {
	kind  Kind
	text  string
	items []string
}

func Missing() Value {
	return Value{kind: KindMissing}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Sequence(items []string) Value {
	return Value{kind: KindSequence, items: items}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Parse turns a raw cell into a canonical label set. It never fails: input
// that cannot be understood yields an empty set.
func Parse(v Value, delimiters string) Set {
	switch v.Kind() {
	case KindMissing:
		return Set{}
	case KindSequence:
		return Canonicalize(v.items)
	case KindText:
		return parseText(v.text, delimiters)
	default:
		return Set{}
	}
}

// ParseString is Parse for a plain cell string.
func ParseString(s, delimiters string) Set {
	return Parse(Text(s), delimiters)
}

func parseText(s, delimiters string) Set {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Set{}
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		if items, ok := decodeList(trimmed); ok {
			return Canonicalize(items)
		}
	}
	return Canonicalize(Split(trimmed, delimiters))
}

// Split breaks s on any rune in delimiters. Empty pieces survive here and are
// dropped by Canonicalize.
func Split(s, delimiters string) []string {
	if delimiters == "" {
		delimiters = DefaultDelimiters
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
}

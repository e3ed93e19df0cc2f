package labels

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyForms(t *testing.T) {
	cases := map[string]Value{
		"missing":       Missing(),
		"empty text":    Text(""),
		"blank text":    Text("   \t"),
		"empty literal": Text("[]"),
		"spaced list":   Text("[  ]"),
		"only commas":   Text(" , ;, "),
		"nil sequence":  Sequence(nil),
		"blank items":   Sequence([]string{" ", ""}),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			got := Parse(v, DefaultDelimiters)
			assert.True(t, got.Empty(), "expected empty set, got %v", got.Strings())
		})
	}
}

func TestValueKinds(t *testing.T) {
	assert.Equal(t, KindMissing, Missing().Kind())
	assert.Equal(t, KindMissing, Value{}.Kind(), "zero value is missing")
	assert.Equal(t, KindText, Text("").Kind())
	assert.Equal(t, KindSequence, Sequence(nil).Kind())
}

func TestParseDelimitedDedupesCaseInsensitively(t *testing.T) {
	got := ParseString("A, b ,, A", ",")
	assert.Equal(t, []string{"A", "b"}, got.Strings())

	got = ParseString("Retail; retail ;FINANCE", DefaultDelimiters)
	assert.Equal(t, []string{"FINANCE", "Retail"}, got.Strings())
}

func TestParseLiteralList(t *testing.T) {
	cases := []struct {
		in     string
		expect []string
	}{
		{in: "['X', 'Y']", expect: []string{"X", "Y"}},
		{in: `["Corporate Finance", 'Retail ']`, expect: []string{"Corporate Finance", "Retail"}},
		{in: "['a, b', 'c']", expect: []string{"a, b", "c"}},
		{in: `['it\'s', "x"]`, expect: []string{"it's", "x"}},
		{in: "[1, 2.5, None, 'x',]", expect: []string{"1", "2.5", "None", "x"}},
		{in: "  ['y', 'x']  ", expect: []string{"x", "y"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expect, ParseString(tc.in, ",").Strings(), "input %q", tc.in)
	}
}

func TestParseMalformedLiteralFallsBackToSplit(t *testing.T) {
	cases := []struct {
		in     string
		expect []string
	}{
		{in: "['a', 'b'", expect: []string{"'b'", "['a'"}},
		{in: "[Retail, Finance]", expect: []string{"[Retail", "Finance]"}},
		{in: "[['nested'], 'x']", expect: []string{"'x']", "[['nested']"}},
		{in: "['unterminated]", expect: []string{"['unterminated]"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expect, ParseString(tc.in, ",").Strings(), "input %q", tc.in)
	}
}

func TestParseSequenceTrims(t *testing.T) {
	got := Parse(Sequence([]string{" Finance ", "finance", "", "Retail"}), ",")
	assert.Equal(t, []string{"Finance", "Retail"}, got.Strings())
}

func TestParseNeverReturnsBlankLabels(t *testing.T) {
	inputs := []string{"", "[", "]", "[,]", "['', ' ']", ";;;", "a;;b", "[None]", "['\\", "\"\""}
	for _, in := range inputs {
		set := ParseString(in, DefaultDelimiters)
		set.Each(func(l string) {
			require.NotEmpty(t, l, "input %q", in)
			require.Equal(t, strings.TrimSpace(l), l, "input %q", in)
		})
	}
}

func TestSetContainsAndUnion(t *testing.T) {
	a := Of("Retail", "Finance")
	b := Of("finance", "Marketing")

	assert.True(t, a.Contains("FINANCE"))
	assert.True(t, a.Contains(" retail "))
	assert.False(t, a.Contains("Fin"))

	u := Union(a, b)
	assert.Equal(t, []string{"Finance", "Marketing", "Retail"}, u.Strings())
	a.Each(func(l string) { assert.True(t, u.Contains(l)) })
	b.Each(func(l string) { assert.True(t, u.Contains(l)) })

	assert.True(t, a.Intersects([]string{"nope", "retail"}))
	assert.False(t, a.Intersects(nil))
}

func TestSetJoinAndJSON(t *testing.T) {
	assert.Equal(t, "Finance", Of("Finance").Join(", "))
	assert.Equal(t, "Finance, Retail", Of("Retail", "Finance").Join(", "))
	assert.Equal(t, "", Set{}.Join(", "))

	data, err := json.Marshal(Set{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	data, err = json.Marshal(Of("b", "A"))
	require.NoError(t, err)
	assert.JSONEq(t, `["A","b"]`, string(data))

	var back Set
	require.NoError(t, json.Unmarshal([]byte(`["b", "B", " A "]`), &back))
	assert.Equal(t, []string{"A", "b"}, back.Strings())
	assert.True(t, back.Contains("a"))
}

func TestFoldHelpers(t *testing.T) {
	assert.True(t, ContainsFold("Corporate Finance", "finance"))
	assert.True(t, ContainsFold("anything", ""))
	assert.False(t, ContainsFold("Retail", "finance"))
	assert.True(t, EqualFold("École", "ÉCOLE"))
	assert.True(t, Less("apple", "Banana"))
	assert.True(t, Less("Apple", "apple"))
}

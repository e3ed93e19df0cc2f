package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facultyCSV = `Name,EMAIL,OpenAlex_ID,Profile Interests - Cleaned,Publicly Available Interests
Alice Adams,alice@example.edu,A123,"['Retail', 'Finance']","Finance; retail"
Bob Brown,bob@example.edu,,"['Finance']",
Carol Chen,,W99,,"['Marketing', 'marketing', 'Branding']"
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestLoader(t *testing.T, encodings ...string) *Loader {
	t.Helper()
	l, err := NewLoader(DefaultSchema(), encodings, nil)
	require.NoError(t, err)
	return l
}

func TestLoadDefaultSchema(t *testing.T) {
	path := writeFile(t, "faculty.csv", []byte(facultyCSV))
	ds, err := newTestLoader(t).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "utf-8", ds.Encoding)
	require.Len(t, ds.Records, 3)

	alice := ds.Records[0]
	assert.Equal(t, "Alice Adams <alice@example.edu>", alice.Identity)
	assert.Equal(t, []string{"Finance", "Retail"}, alice.Labels("profile").Strings())
	assert.Equal(t, []string{"Finance", "retail"}, alice.Labels("public").Strings())
	assert.Equal(t, []string{"Finance", "Retail"}, alice.Merged().Strings())
	assert.Equal(t, "https://openalex.org/A123", ds.ProfileURL(alice))

	bob := ds.Records[1]
	assert.True(t, bob.Labels("public").Empty())
	assert.Equal(t, "", ds.ProfileURL(bob))

	carol := ds.Records[2]
	assert.Equal(t, "Carol Chen", carol.Identity)
	assert.Equal(t, []string{"Branding", "Marketing"}, carol.Labels("public").Strings())
	assert.Equal(t, "", ds.ProfileURL(carol), "ids without the configured prefix have no profile link")

	assert.True(t, alice.Labels("category").Empty(), "optional source column absent")
	assert.True(t, alice.Labels("nope").Empty())
	assert.Empty(t, ds.Duplicates)
}

func TestLoadFallsBackToLegacyEncoding(t *testing.T) {
	data := []byte("Name,Profile Interests - Cleaned,Publicly Available Interests\nJos\xe9 Mart\xednez,\"['Caf\xe9 Culture']\",\n")
	path := writeFile(t, "latin.csv", data)

	ds, err := newTestLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", ds.Encoding)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "José Martínez", ds.Records[0].Name)
	assert.Equal(t, []string{"Café Culture"}, ds.Records[0].Labels("profile").Strings())
}

func TestLoadReportsAttemptedEncodings(t *testing.T) {
	data := []byte("Name,Profile Interests - Cleaned,Publicly Available Interests\nJos\xe9,,\n")
	path := writeFile(t, "latin.csv", data)

	_, err := newTestLoader(t, "utf-8").Load(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, []string{"utf-8"}, loadErr.Attempted)
	assert.True(t, errors.Is(err, ErrUndecodable))
	assert.Contains(t, err.Error(), "utf-8")
}

func TestLoadMissingRequiredColumns(t *testing.T) {
	path := writeFile(t, "partial.csv", []byte("Name,EMAIL\nAlice,a@example.edu\n"))

	_, err := newTestLoader(t).Load(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Equal(t, []string{"Profile Interests - Cleaned", "Publicly Available Interests"}, loadErr.Missing)
	assert.Equal(t, []string{"Profile Interests - Cleaned", "Publicly Available Interests"}, loadErr.Details()["missingColumns"])
}

func TestLoadEmptyAndUnreadableFiles(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.Load(writeFile(t, "empty.csv", []byte("  \n")))
	assert.True(t, errors.Is(err, ErrEmptyFile))

	_, err = l.Load(filepath.Join(t.TempDir(), "nope.csv"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "read", loadErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDuplicatesAndBlankIdentities(t *testing.T) {
	csv := "\ufeffname,Profile Interests - Cleaned,Publicly Available Interests\n" +
		"Dana,Retail,\n" +
		" ,Finance,\n" +
		"Dana,Finance,\n" +
		"Eve,\"[1, None]\"\n"
	path := writeFile(t, "dups.csv", []byte(csv))

	ds, err := newTestLoader(t).Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)
	assert.Equal(t, 1, ds.Skipped)
	assert.Equal(t, []string{"Dana"}, ds.Duplicates)
	assert.Equal(t, []string{"1", "None"}, ds.Records[2].Labels("profile").Strings())
	assert.True(t, ds.Records[2].Labels("public").Empty(), "short rows read as missing cells")
}

func TestLoadTSV(t *testing.T) {
	tsv := "Name\tProfile Interests - Cleaned\tPublicly Available Interests\n" +
		"Frank\tStrategy, Retail\t['Operations']\n"
	path := writeFile(t, "faculty.tsv", []byte(tsv))

	ds, err := newTestLoader(t).Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, []string{"Operations", "Retail", "Strategy"}, ds.Records[0].Merged().Strings())
}

func TestResolveEncodings(t *testing.T) {
	encs, err := ResolveEncodings(nil)
	require.NoError(t, err)
	require.Len(t, encs, len(DefaultEncodings))
	assert.True(t, encs[0].strict)
	assert.False(t, encs[1].strict)

	_, err = ResolveEncodings([]string{"klingon-8"})
	assert.Error(t, err)

	_, err = ResolveEncodings([]string{" ", ""})
	assert.Error(t, err)
}

func TestDecodeRejectsUnmappedBytes(t *testing.T) {
	encs, err := ResolveEncodings(nil)
	require.NoError(t, err)

	_, err = encs[1].Decode([]byte("a\x81b"))
	assert.Error(t, err, "windows-1252 leaves 0x81 undefined")

	out, err := encs[2].Decode([]byte("a\x81b"))
	require.NoError(t, err)
	assert.Equal(t, "a\u0081b", string(out))

	out, err = encs[1].Decode([]byte("caf\xe9"))
	require.NoError(t, err)
	assert.Equal(t, "café", string(out))
}

func TestLoadSkipsEncodingThatLosesBytes(t *testing.T) {
	data := []byte("Name,Profile Interests - Cleaned,Publicly Available Interests\nJos\xe9\x81,Retail,\n")
	path := writeFile(t, "latin.csv", data)

	ds, err := newTestLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", ds.Encoding)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "José\u0081", ds.Records[0].Name)
}

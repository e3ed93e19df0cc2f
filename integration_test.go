//go:build integration

package topicatlas

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/topicatlas/internal/config"
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/export"
	"github.com/example/topicatlas/internal/httpapi"
)

// Latin-1 encoded on purpose: the loader has to fall back from UTF-8.
var facultyCSV = []byte("Name,EMAIL,OpenAlex_ID,Profile Interests - Cleaned,Publicly Available Interests,AI Categories,AI Keywords\n" +
	"Alice,,A1,\"['Retail', 'Finance']\",,\"['Retail', 'Finance']\",\"['supply chain']\"\n" +
	"Bob,,,Finance,,Finance,corporate finance\n" +
	"Jos\xe9,jose@example.edu,,Caf\xe9 culture,,Marketing,\n")

func TestEndToEnd(t *testing.T) {
	root := t.TempDir()
	dataPath := filepath.Join(root, "faculty.csv")
	require.NoError(t, os.WriteFile(dataPath, facultyCSV, 0o644))

	cfg := &config.Config{
		Bind:            ":0",
		DataPath:        dataPath,
		Schema:          dataset.DefaultSchema(),
		Encodings:       dataset.DefaultEncodings,
		ExportDir:       filepath.Join(root, "exports"),
		ExportSeparator: export.DefaultSeparator,
		SwaggerUIPath:   "/swagger",
		OpenAPIPath:     "/openapi.yaml",
	}
	loader, err := dataset.NewLoader(cfg.Schema, cfg.Encodings, zap.NewNop())
	require.NoError(t, err)
	cache := dataset.NewCache(loader)
	_, err = cache.Get(context.Background(), cfg.DataPath)
	require.NoError(t, err)

	srv := httptest.NewServer(httpapi.NewRouter(cfg, cache, export.NewManager(cfg.ExportDir), zap.NewNop()))
	t.Cleanup(srv.Close)

	getJSON := func(path string, out any) int {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		return resp.StatusCode
	}

	var ready httpapi.Health
	assert.Equal(t, http.StatusOK, getJSON("/readyz", &ready))

	var sources httpapi.SourceList
	require.Equal(t, http.StatusOK, getJSON("/api/sources", &sources))
	assert.Equal(t, "windows-1252", sources.Encoding)
	assert.Equal(t, 3, sources.Records)

	var facets httpapi.FacetList
	require.Equal(t, http.StatusOK, getJSON("/api/topics?source=category&hideSingletons=true", &facets))
	require.Len(t, facets.Items, 1)
	assert.Equal(t, "Finance", facets.Items[0].Label)
	assert.Equal(t, 2, facets.Items[0].Count)

	var members httpapi.MemberList
	require.Equal(t, http.StatusOK, getJSON("/api/topics/Retail/members?source=category", &members))
	require.Len(t, members.Items, 1)
	assert.Equal(t, "Alice", members.Items[0].Identity)

	var person httpapi.Person
	path := "/api/people/" + url.PathEscape("José <jose@example.edu>")
	require.Equal(t, http.StatusOK, getJSON(path, &person))
	assert.Equal(t, []string{"Café culture"}, person.Sources[0].Labels.Strings())

	resp, err := http.Get(srv.URL + "/api/records/export.csv?keyword=Finance&match=substring")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Bob,,Finance,,Finance,corporate finance", lines[1])

	swagger, err := http.Get(srv.URL + "/swagger/")
	require.NoError(t, err)
	swagger.Body.Close()
	assert.Equal(t, http.StatusOK, swagger.StatusCode)
}

// Package export writes filtered records as delimited files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/example/topicatlas/internal/dataset"
)

// DefaultSeparator joins the labels of one field.
const DefaultSeparator = ", "

// Header returns the column titles: name, contact, then one per source.
func Header(sources []dataset.SourceSpec) []string {
	out := []string{"Name", "Contact"}
	for _, s := range sources {
		out = append(out, s.Title)
	}
	return out
}

// Row renders a record with its label fields joined by sep.
func Row(sources []dataset.SourceSpec, r dataset.Record, sep string) []string {
	out := []string{r.Name, r.Contact}
	for _, s := range sources {
		out = append(out, r.Labels(s.Name).Join(sep))
	}
	return out
}

// WriteRecords writes the header and one row per record.
func WriteRecords(w io.Writer, sources []dataset.SourceSpec, records []dataset.Record, sep string) error {
	if sep == "" {
		sep = DefaultSeparator
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(sources)); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(Row(sources, r, sep)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecord is the single selected record variant.
func WriteRecord(w io.Writer, sources []dataset.SourceSpec, r dataset.Record, sep string) error {
	return WriteRecords(w, sources, []dataset.Record{r}, sep)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds a timestamped export file name from a free-form stem.
func FileName(stem string, now time.Time) string {
	stem = strings.Trim(unsafeName.ReplaceAllString(strings.TrimSpace(stem), "_"), "_.")
	if stem == "" {
		stem = "export"
	}
	return fmt.Sprintf("%s-%s.csv", stem, now.UTC().Format("20060102-150405"))
}

// Manager writes export files under a root directory.
type Manager struct {
	root string
	now  func() time.Time
}

func NewManager(root string) *Manager {
	return &Manager{root: root, now: time.Now}
}

// Save writes records to a new timestamped file and returns its path. The
// file only appears once fully written.
func (m *Manager) Save(stem string, sources []dataset.SourceSpec, records []dataset.Record, sep string) (string, error) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(m.root, "export-*")
	if err != nil {
		return "", err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := WriteRecords(tmp, sources, records, sep); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	path := filepath.Join(m.root, FileName(stem, m.now()))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

func (m *Manager) IsWritable() error {
	testPath := filepath.Join(m.root, ".writetest")
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(testPath, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(testPath)
}

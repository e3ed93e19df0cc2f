package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/example/topicatlas/internal/labels"
)

// Loader reads dataset files against a schema.
type Loader struct {
	schema    Schema
	encodings []Encoding
	logger    *zap.Logger
}

func NewLoader(schema Schema, encodings []string, logger *zap.Logger) (*Loader, error) {
	schema = schema.withDefaults()
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	encs, err := ResolveEncodings(encodings)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{schema: schema, encodings: encs, logger: logger}, nil
}

func (l *Loader) Schema() Schema {
	return l.schema
}

// Load reads path and builds an immutable Dataset. Any *LoadError is fatal for
// the whole file.
func (l *Loader) Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "read", Err: err}
	}
	return l.Parse(path, data)
}

// Parse builds a Dataset from file contents; path picks the delimiter and is
// used in diagnostics.
func (l *Loader) Parse(path string, data []byte) (*Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Path: path, Op: "parse", Err: ErrEmptyFile}
	}
	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}

	var (
		rows     [][]string
		used     string
		decoded  bool
		attempts []string
		lastErr  error
	)
	for _, enc := range l.encodings {
		attempts = append(attempts, enc.Name)
		text, err := enc.Decode(data)
		if err != nil {
			l.logger.Debug("encoding rejected", zap.String("path", path), zap.String("encoding", enc.Name), zap.Error(err))
			lastErr = err
			continue
		}
		parsed, err := readRows(text, comma)
		if err != nil {
			l.logger.Debug("csv parse failed", zap.String("path", path), zap.String("encoding", enc.Name), zap.Error(err))
			lastErr = err
			continue
		}
		rows, used, decoded = parsed, enc.Name, true
		break
	}
	if !decoded {
		return nil, &LoadError{Path: path, Op: "decode", Attempted: attempts, Err: fmt.Errorf("%w: %v", ErrUndecodable, lastErr)}
	}
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Op: "parse", Err: ErrEmptyFile}
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	cols, missing := l.resolveColumns(header)
	if len(missing) > 0 {
		return nil, &LoadError{Path: path, Op: "resolve columns", Missing: missing, Err: ErrMissingColumns}
	}

	ds := &Dataset{
		Path:     path,
		Encoding: used,
		Schema:   l.schema,
		Records:  make([]Record, 0, len(rows)-1),
	}
	seen := make(map[string]int)
	for i, row := range rows[1:] {
		name := cleanCell(cellAt(row, cols.identity))
		if name == "" {
			ds.Skipped++
			l.logger.Debug("row skipped: empty identity", zap.String("path", path), zap.Int("line", i+2))
			continue
		}
		rec := Record{
			Name:       name,
			Contact:    cleanCell(cellAt(row, cols.contact)),
			ExternalID: cleanCell(cellAt(row, cols.external)),
			Topics:     make([]SourceLabels, len(l.schema.Sources)),
		}
		rec.Identity = identityOf(rec.Name, rec.Contact)
		for j, src := range l.schema.Sources {
			rec.Topics[j] = SourceLabels{
				Source: src.Name,
				Labels: labels.Parse(valueAt(row, cols.sources[j]), src.Delimiters),
			}
		}
		seen[rec.Identity]++
		ds.Records = append(ds.Records, rec)
	}
	for identity, n := range seen {
		if n > 1 {
			ds.Duplicates = append(ds.Duplicates, identity)
		}
	}
	sort.Strings(ds.Duplicates)
	if len(ds.Duplicates) > 0 {
		// Lookups resolve to the first row; the data may need cleaning upstream.
		l.logger.Warn("duplicate identities in dataset", zap.String("path", path), zap.Strings("identities", ds.Duplicates))
	}
	l.logger.Info("dataset loaded",
		zap.String("path", path),
		zap.String("encoding", used),
		zap.Int("records", len(ds.Records)),
		zap.Int("skipped", ds.Skipped),
	)
	return ds, nil
}

type columnIndexes struct {
	identity int
	contact  int
	external int
	sources  []int
}

func (l *Loader) resolveColumns(header []string) (columnIndexes, []string) {
	var missing []string
	cols := columnIndexes{
		identity: findColumn(header, l.schema.IdentityColumn),
		contact:  findColumn(header, l.schema.ContactColumn),
		external: findColumn(header, l.schema.ExternalIDColumn),
		sources:  make([]int, len(l.schema.Sources)),
	}
	if cols.identity < 0 {
		missing = append(missing, l.schema.IdentityColumn)
	}
	for i, src := range l.schema.Sources {
		cols.sources[i] = findColumn(header, src.Column)
		if cols.sources[i] < 0 && !src.Optional {
			missing = append(missing, src.Column)
		}
	}
	return cols, missing
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func findColumn(header []string, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1
	}
	for i, col := range header {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func valueAt(row []string, idx int) labels.Value {
	if idx < 0 || idx >= len(row) {
		return labels.Missing()
	}
	return labels.Text(row[idx])
}

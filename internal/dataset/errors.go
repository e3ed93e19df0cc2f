package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumns = errors.New("required columns missing")
	ErrUndecodable    = errors.New("file could not be decoded")
	ErrEmptyFile      = errors.New("empty file")
)

// LoadError reports why a dataset could not be served. It is fatal for the
// dataset: no partial records are returned alongside it.
type LoadError struct {
	Path      string
	Op        string
	Missing   []string
	Attempted []string
	Err       error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load %s: %s", e.Path, e.Op)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing columns %s", quoteAll(e.Missing))
	}
	if len(e.Attempted) > 0 {
		fmt.Fprintf(&b, ": tried encodings %s", strings.Join(e.Attempted, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Details is a flat view of the error for API responses.
func (e *LoadError) Details() map[string]any {
	d := map[string]any{"path": e.Path, "op": e.Op}
	if len(e.Missing) > 0 {
		d["missingColumns"] = e.Missing
	}
	if len(e.Attempted) > 0 {
		d["attemptedEncodings"] = e.Attempted
	}
	return d
}

func quoteAll(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(out, ", ")
}

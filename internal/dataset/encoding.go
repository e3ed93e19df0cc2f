package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncodings is the order text encodings are tried in when none are
// configured.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	errInvalidUTF8  = errors.New("invalid utf-8")
	errUnmappedByte = errors.New("bytes undefined in encoding")
)

// replacementChar is U+FFFD in UTF-8.
var replacementChar = []byte("\uFFFD")

// Encoding is a named text encoding candidate.
type Encoding struct {
	Name   string
	enc    encoding.Encoding
	strict bool
}

// ResolveEncodings looks up IANA names or aliases, keeping the given order.
func ResolveEncodings(names []string) ([]Encoding, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}
	out := make([]Encoding, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("encoding %q is not supported", name)
		}
		canonical, err := ianaindex.IANA.Name(enc)
		if err != nil {
			canonical = name
		}
		out = append(out, Encoding{
			Name:   name,
			enc:    enc,
			strict: strings.EqualFold(canonical, "UTF-8"),
		})
	}
	if len(out) == 0 {
		return nil, errors.New("no encodings configured")
	}
	return out, nil
}

// Decode converts data to UTF-8. Nothing is repaired: invalid UTF-8, or bytes
// a legacy encoding maps to U+FFFD, reject the candidate so the next one in
// the list is tried.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	if e.strict {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return nil, errInvalidUTF8
		}
		return data, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(e.enc.NewDecoder()), data)
	if err != nil {
		return nil, err
	}
	if bytes.Contains(out, replacementChar) && !bytes.Contains(data, replacementChar) {
		return nil, errUnmappedByte
	}
	return out, nil
}

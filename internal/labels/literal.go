package labels

import (
	"strconv"
	"strings"
	"unicode"
)

// decodeList reads a bracketed list literal such as ['a', "b", 3]. Quoted
// elements may use either quote style with backslash escapes; bare scalars
// (numbers, True, False, None) are kept as written. Anything else, nested
// containers included, is rejected.
func decodeList(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	runes := []rune(s[1 : len(s)-1])
	var out []string
	i := 0
	skipSpace := func() {
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
	}
	for {
		skipSpace()
		if i >= len(runes) {
			return out, true
		}
		var elem string
		switch r := runes[i]; r {
		case '\'', '"':
			val, next, ok := readQuoted(runes, i)
			if !ok {
				return nil, false
			}
			elem, i = val, next
		case '[', ']', '{', '}', '(', ')', ',':
			return nil, false
		default:
			start := i
			for i < len(runes) && runes[i] != ',' {
				switch runes[i] {
				case '\'', '"', '[', ']', '{', '}', '(', ')':
					return nil, false
				}
				i++
			}
			elem = strings.TrimSpace(string(runes[start:i]))
			if !isScalar(elem) {
				return nil, false
			}
		}
		out = append(out, elem)
		skipSpace()
		if i >= len(runes) {
			return out, true
		}
		if runes[i] != ',' {
			return nil, false
		}
		i++
	}
}

func readQuoted(runes []rune, start int) (string, int, bool) {
	quote := runes[start]
	var b strings.Builder
	for i := start + 1; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\':
			if i+1 >= len(runes) {
				return "", 0, false
			}
			i++
			switch esc := runes[i]; esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(esc)
			}
		case r == quote:
			return b.String(), i + 1, true
		default:
			b.WriteRune(r)
		}
	}
	return "", 0, false
}

func isScalar(tok string) bool {
	switch tok {
	case "":
		return false
	case "True", "False", "None":
		return true
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(tok, "_", ""), 64)
	return err == nil
}

package listcodec

import (
	"encoding/json"
	"strings"
)

// Version is the encoding written by Encode: a JSON array of strings.
// Version 0 is the Python list literal (['a', "b"]) found in older cache files; Decode still reads it.
const Version = 1

// Encode serializes an ordered string list for a single table cell. Nil encodes as "[]".
func Encode(items []string) string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// Decode parses a cell written by Encode or by the legacy list-literal writer.
// Empty or garbled input decodes to an empty, non-nil slice.
func Decode(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "[]" {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err == nil {
		if items == nil {
			return []string{}
		}
		return items
	}

	if items, ok := decodeLiteral(cell); ok {
		return items
	}
	return []string{}
}

// decodeLiteral reads a flat Python list of quoted strings.
func decodeLiteral(cell string) ([]string, bool) {
	if len(cell) < 2 || cell[0] != '[' || cell[len(cell)-1] != ']' {
		return nil, false
	}

	body := []rune(cell[1 : len(cell)-1])
	items := []string{}
	i := 0
	for {
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i == len(body) {
			return items, true
		}

		quote := body[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++

		var sb strings.Builder
		closed := false
		for i < len(body) {
			r := body[i]
			if r == '\\' && i+1 < len(body) {
				sb.WriteRune(unescape(body[i+1]))
				i += 2
				continue
			}
			i++
			if r == quote {
				closed = true
				break
			}
			sb.WriteRune(r)
		}
		if !closed {
			return nil, false
		}
		items = append(items, sb.String())

		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i == len(body) {
			return items, true
		}
		if body[i] != ',' {
			return nil, false
		}
		i++
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return r
	}
}

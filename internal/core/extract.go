package core

import (
	"encoding/json"
	"strings"

	"github.com/difylang/dbagent/internal/models"
)

// ExtractDataset scans an assistant message for an embedded tabular payload (a
// JSON array of objects, bare or inside a code fence) and parses it into a
// dataset. Malformed or absent payloads yield (nil, false) - extraction never
// fails loudly, so a bad payload cannot disturb whatever dataset is already on
// display.
func ExtractDataset(text string) (*models.TabularDataset, bool) {
	for _, candidate := range payloadCandidates(text) {
		if ds, ok := parseRows(candidate); ok {
			return ds, true
		}
	}
	return nil, false
}

// payloadCandidates returns every balanced top-level JSON array found in the
// text, fenced code blocks first since the agent usually wraps results there.
func payloadCandidates(text string) []string {
	var candidates []string
	for _, block := range fencedBlocks(text) {
		candidates = append(candidates, balancedArrays(block)...)
	}
	candidates = append(candidates, balancedArrays(text)...)
	return candidates
}

func fencedBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return blocks
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			return blocks
		}
		block := rest[:end]
		// Drop a language tag on the opening fence line.
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(block[:nl])
			if firstLine != "" && !strings.ContainsAny(firstLine, "[{") {
				block = block[nl+1:]
			}
		}
		blocks = append(blocks, block)
		rest = rest[end+3:]
	}
}

// balancedArrays walks the text and slices out each bracket-balanced array,
// honoring JSON string literals and escapes.
func balancedArrays(text string) []string {
	var arrays []string
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := matchArray(text, i)
		if end < 0 {
			continue
		}
		arrays = append(arrays, text[i:end+1])
		i = end
	}
	return arrays
}

func matchArray(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseRows decodes a JSON array of objects while preserving the key order of
// the raw payload; column order must follow the first row as serialized, which
// a plain map round-trip would lose.
func parseRows(payload string) (*models.TabularDataset, bool) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, false
	}

	var columns []string
	seen := make(map[string]bool)
	var rows []map[string]any

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, false
		}

		row := make(map[string]any)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, false
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, false
			}
			var value any
			if err := dec.Decode(&value); err != nil {
				return nil, false
			}
			row[key] = normalizeValue(value)
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return nil, false
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return nil, false
	}

	if len(rows) == 0 {
		return nil, false
	}

	return &models.TabularDataset{
		Columns: columns,
		Rows:    rows,
		Total:   len(rows),
	}, true
}

// normalizeValue converts json.Number leaves back to ordinary Go values so
// consumers are not exposed to the decoder's number representation.
func normalizeValue(v any) any {
	switch value := v.(type) {
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return n
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case []any:
		for i := range value {
			value[i] = normalizeValue(value[i])
		}
		return value
	case map[string]any:
		for k := range value {
			value[k] = normalizeValue(value[k])
		}
		return value
	default:
		return v
	}
}

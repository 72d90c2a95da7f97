// Package mdtable extracts pipe-delimited tables from free-form LLM output.
// The parser tolerates prose before and after the table, code fences, blank
// lines inside the table body, and ragged rows, which are dropped and counted
// rather than failing the parse.
package mdtable

import "strings"

// Table is the parse result.  Rows map canonical header keys to cell values
// and preserve source order.  Rejected counts body lines whose cell count did
// not match the header width.
type Table struct {
	Headers  []string
	Rows     []map[string]string
	Rejected int
}

// Empty reports whether the parse produced no usable rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// CanonicalKey normalizes a header cell to a lower_snake key so downstream
// code never depends on the LLM's header casing ("Company" vs "company",
// "Confidence (%)" vs "confidence").
func CanonicalKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && sb.Len() > 0 {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "_")
}

// splitRow splits a pipe-delimited line into trimmed cells, dropping the
// empty edge tokens produced by lines written as "| a | b |".
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// collectTableLines captures the first contiguous run of pipe-containing
// lines.  Code-fence markers are skipped, blank lines inside the run are
// tolerated, and the first non-pipe non-blank line after the run ends it.
func collectTableLines(markdown string) []string {
	var collected []string
	inTable := false
	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "```") {
			continue
		}
		switch {
		case strings.Contains(line, "|"):
			collected = append(collected, line)
			inTable = true
		case line == "":
			// Blank line inside the table body does not end the run.
		case inTable:
			return collected
		}
	}
	return collected
}

// Parse extracts the first markdown table from markdown.  The first captured
// line supplies the headers, the second is discarded as the separator row,
// and each remaining line becomes a row only when its cell count exactly
// matches the header width.  A response with no table yields an empty Table,
// never an error.
func Parse(markdown string) *Table {
	t := &Table{}
	lines := collectTableLines(markdown)
	if len(lines) < 2 {
		return t
	}

	rawHeaders := splitRow(lines[0])
	if len(rawHeaders) == 0 {
		return t
	}
	t.Headers = make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		t.Headers[i] = CanonicalKey(h)
	}

	// lines[1] is the |---|---| separator, discarded unconditionally.
	for _, line := range lines[2:] {
		cells := splitRow(line)
		if len(cells) != len(t.Headers) {
			t.Rejected++
			continue
		}
		row := make(map[string]string, len(cells))
		for i, cell := range cells {
			row[t.Headers[i]] = cell
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

//Personal.AI order the ending

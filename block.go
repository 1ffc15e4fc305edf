package cinit

import (
	"regexp"
	"strings"
)

// FieldMap maps a field name to its raw, unevaluated value text.
type FieldMap map[string]string

// IndexedEntryMap maps an entry key to the FieldMap extracted from its
// initializer block.
type IndexedEntryMap map[string]FieldMap

// ExtractFieldMap turns the interior of one `{ ... }` initializer body into
// a FieldMap. A field begins on a line starting with `.name =`; its value
// accumulates across lines until the bracket depths return to zero and the
// fragment ends with a comma. Fragments join with single spaces. Inline
// `, .field` continuations are normalized onto their own lines first, and a
// repeated field keeps its last value. A field still open at end of input
// is committed with whatever accumulated, so a truncated trailing value is
// not lost.
func ExtractFieldMap(interior string) FieldMap {
	fields := make(FieldMap)
	var expanded []string
	for _, raw := range strings.Split(interior, "\n") {
		if strings.Contains(raw, ", .") {
			raw = strings.ReplaceAll(raw, ", .", ",\n.")
		}
		expanded = append(expanded, strings.Split(raw, "\n")...)
	}
	current := ""
	open := false
	var buffer []string
	paren, brace := 0, 0
	for _, raw := range expanded {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !open {
			if !strings.HasPrefix(line, ".") || !strings.Contains(line, "=") {
				continue
			}
			name, rest, _ := strings.Cut(line[1:], "=")
			current = strings.TrimSpace(name)
			value := strings.TrimSpace(rest)
			hasComma := strings.HasSuffix(value, ",")
			if hasComma {
				value = strings.TrimSpace(strings.TrimSuffix(value, ","))
			}
			buffer = []string{value}
			open = true
			paren, brace = ScanDepth(value, 0, 0)
			if paren == 0 && brace == 0 && hasComma {
				fields[current] = value
				open = false
				buffer = nil
				paren, brace = 0, 0
			}
			continue
		}
		value := line
		hasComma := strings.HasSuffix(value, ",")
		if hasComma {
			value = strings.TrimSpace(strings.TrimSuffix(value, ","))
		}
		buffer = append(buffer, value)
		paren, brace = ScanDepth(value, paren, brace)
		if paren == 0 && brace == 0 && hasComma {
			fields[current] = strings.TrimSpace(strings.Join(buffer, " "))
			open = false
			buffer = nil
			paren, brace = 0, 0
		}
	}
	if open && len(buffer) > 0 {
		fields[current] = strings.TrimSpace(strings.Join(buffer, " "))
	}
	return fields
}

// ScanIndexedEntries scans text for `[KEY] = { ... }` blocks whose KEY
// matches keyPattern and extracts one FieldMap per key. Trailing syntax
// after the closing brace is ignored. A malformed block (no opening brace,
// still open at end of input, or an empty multi-line body) is skipped so a
// single bad entry cannot abort the rest of the scan. The returned error is
// only for an invalid key pattern.
func ScanIndexedEntries(text, keyPattern string) (IndexedEntryMap, error) {
	keyRe, err := regexp.Compile(`^\[(` + keyPattern + `)\]\s*=`)
	if err != nil {
		return nil, &ParseError{Decoder: "indexed-entry scanner", Fragment: keyPattern, Message: "invalid key pattern"}
	}
	entries := make(IndexedEntryMap)
	lines := strings.Split(text, "\n")
	index := 0
	for index < len(lines) {
		m := keyRe.FindStringSubmatch(strings.TrimSpace(lines[index]))
		if m == nil {
			index++
			continue
		}
		key := m[1]
		// The opening brace may sit on the key line itself.
		if !strings.Contains(lines[index], "{") {
			index++
			for index < len(lines) && !strings.Contains(lines[index], "{") {
				index++
			}
			if index >= len(lines) {
				break
			}
		}
		var block []string
		depth := 0
		closed := false
		for index < len(lines) {
			line := lines[index]
			depth += strings.Count(line, "{")
			depth -= strings.Count(line, "}")
			block = append(block, line)
			index++
			if depth <= 0 {
				closed = true
				break
			}
		}
		if !closed {
			continue
		}
		if len(block) == 1 {
			start := strings.Index(block[0], "{")
			end := strings.LastIndex(block[0], "}")
			if start == -1 || end <= start {
				continue
			}
			entries[key] = ExtractFieldMap(block[0][start+1 : end])
			continue
		}
		if len(block) < 2 {
			continue
		}
		entries[key] = ExtractFieldMap(strings.Join(block[1:len(block)-1], "\n"))
	}
	return entries, nil
}

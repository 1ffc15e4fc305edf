package cinit

import "strings"

// ScanDepth advances the parenthesis and brace depths across text starting
// from the given depths. Structural characters inside double-quoted string
// literals are ignored; a backslash escapes the following character while
// inside a string. ScanDepth never fails: depths may go negative on
// malformed input, and callers detect that by checking the depths return to
// their baseline at block boundaries.
func ScanDepth(text string, paren, brace int) (int, int) {
	inString := false
	escape := false
	for _, ch := range text {
		if ch == '"' && !escape {
			inString = !inString
		}
		if inString {
			escape = ch == '\\' && !escape
			continue
		}
		escape = false
		switch ch {
		case '(':
			paren++
		case ')':
			paren--
		case '{':
			brace++
		case '}':
			brace--
		}
	}
	return paren, brace
}

// SplitTopLevel splits a comma-delimited list on commas that sit at
// parenthesis and brace depth zero outside string literals. Pieces are
// trimmed and empty pieces dropped. This is the single splitting primitive
// behind macro arguments, brace lists and entry tuples.
func SplitTopLevel(text string) []string {
	var parts []string
	var current strings.Builder
	paren, brace := 0, 0
	inString := false
	escape := false
	for _, ch := range text {
		if ch == '"' && !escape {
			inString = !inString
		}
		if inString {
			escape = ch == '\\' && !escape
			current.WriteRune(ch)
			continue
		}
		escape = false
		switch ch {
		case '(':
			paren++
		case ')':
			paren--
		case '{':
			brace++
		case '}':
			brace--
		}
		if ch == ',' && paren == 0 && brace == 0 {
			if part := strings.TrimSpace(current.String()); part != "" {
				parts = append(parts, part)
			}
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	if part := strings.TrimSpace(current.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

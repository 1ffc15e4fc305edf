package cinit

import (
	"regexp"
	"strings"
)

// EntryTuple is one decoded entry of a nested entry list, such as an
// evolution table row: method, parameter and target plus any conditions
// from a nested condition group.
type EntryTuple struct {
	Method     string
	Parameter  string
	Target     string
	Conditions []string
}

// DefaultConditionsKeyword marks the nested condition group of an entry.
const DefaultConditionsKeyword = "CONDITIONS"

var (
	quotedRe = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	callRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*\(`)
)

// stripCall removes one wrapping IDENT( ... ) or ( ... ) layer.
func stripCall(text string) string {
	if callRe.MatchString(text) && strings.HasSuffix(text, ")") {
		start := strings.Index(text, "(")
		end := strings.LastIndex(text, ")")
		if start != -1 && end > start {
			return text[start+1 : end]
		}
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		return text[1 : len(text)-1]
	}
	return text
}

// DecodeString strips an optional wrapping call and concatenates every
// quoted string literal in the remainder with escape sequences decoded,
// mirroring adjacent string literal concatenation. Text without any
// literal is returned trimmed as-is.
func DecodeString(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = stripCall(text)
	literals := quotedRe.FindAllString(text, -1)
	if len(literals) == 0 {
		return strings.TrimSpace(text)
	}
	var sb strings.Builder
	for _, lit := range literals {
		sb.WriteString(decodeEscapes(lit[1 : len(lit)-1]))
	}
	return sb.String()
}

func decodeEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteByte(s[i])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// DecodeMacroArgs extracts the comma-separated arguments between the first
// `(` and the matching last `)` of a macro call. Text without parentheses
// is returned as a single argument.
func DecodeMacroArgs(raw string) ([]string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start == -1 && end == -1 {
		return []string{text}, nil
	}
	if start == -1 || end <= start {
		return nil, &ParseError{Decoder: "macro-argument decoder", Fragment: text, Message: "unbalanced parentheses"}
	}
	return SplitTopLevel(text[start+1 : end]), nil
}

// DecodeBraceList splits a brace-delimited initializer list into its top
// level elements, stripping one layer of braces when present.
func DecodeBraceList(raw string) ([]string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	open := strings.HasPrefix(text, "{")
	closed := strings.HasSuffix(text, "}")
	if open != closed {
		return nil, &ParseError{Decoder: "brace-list decoder", Fragment: text, Message: "unbalanced braces"}
	}
	if open {
		text = text[1 : len(text)-1]
	}
	return SplitTopLevel(text), nil
}

// DecodeEntryList decodes a nested entry list such as an evolution table
// into ordered EntryTuples, using DefaultConditionsKeyword for nested
// condition groups.
func DecodeEntryList(raw string) ([]EntryTuple, error) {
	return DecodeEntryListKeyword(raw, DefaultConditionsKeyword)
}

// DecodeEntryListKeyword decodes a nested entry list whose condition
// groups are introduced by keyword. An optional wrapping call is stripped
// first; an interior of NULL (or nothing) decodes to an empty list. Each
// top-level brace group becomes one EntryTuple whose first three parts are
// method, parameter and target; a trailing part starting with keyword is
// unwrapped into Conditions, any other trailing part is appended verbatim.
func DecodeEntryListKeyword(raw, keyword string) ([]EntryTuple, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	text = strings.TrimSpace(stripCall(text))
	if text == "" || text == "NULL" {
		return nil, nil
	}
	var entries []EntryTuple
	var current strings.Builder
	depth := 0
	for _, ch := range text {
		if ch == '{' {
			if depth == 0 {
				current.Reset()
			}
			depth++
		}
		if depth > 0 {
			current.WriteRune(ch)
		}
		if ch == '}' {
			depth--
			if depth == 0 {
				entry, err := decodeEntryGroup(current.String(), keyword)
				if err != nil {
					return nil, err
				}
				entries = append(entries, entry)
			}
		}
	}
	if depth != 0 {
		return nil, &ParseError{Decoder: "entry-list decoder", Fragment: text, Message: "unbalanced braces"}
	}
	return entries, nil
}

func decodeEntryGroup(group, keyword string) (EntryTuple, error) {
	text := strings.TrimSpace(group)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		text = text[1 : len(text)-1]
	}
	parts := SplitTopLevel(text)
	if len(parts) < 3 {
		return EntryTuple{}, &ParseError{Decoder: "entry-list decoder", Fragment: text, Message: "entry needs method, parameter and target"}
	}
	entry := EntryTuple{Method: parts[0], Parameter: parts[1], Target: parts[2]}
	for _, extra := range parts[3:] {
		if !strings.HasPrefix(extra, keyword) {
			entry.Conditions = append(entry.Conditions, extra)
			continue
		}
		start := strings.Index(extra, "(")
		end := strings.LastIndex(extra, ")")
		if start == -1 || end <= start {
			return EntryTuple{}, &ParseError{Decoder: "entry-list decoder", Fragment: extra, Message: "unbalanced condition group"}
		}
		block := extra[start+1 : end]
		depth := 0
		groupStart := -1
		for idx, ch := range block {
			switch ch {
			case '{':
				if depth == 0 {
					groupStart = idx + 1
				}
				depth++
			case '}':
				depth--
				if depth == 0 && groupStart >= 0 {
					condParts := SplitTopLevel(block[groupStart:idx])
					if len(condParts) > 0 {
						entry.Conditions = append(entry.Conditions, strings.Join(condParts, " "))
					}
					groupStart = -1
				}
			}
		}
	}
	return entry, nil
}

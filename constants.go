package cinit

import (
	"regexp"
	"strings"
)

var (
	defineRe    = regexp.MustCompile(`^#define\s+(\w+)\s+([^/\n]+)`)
	enumEntryRe = regexp.MustCompile(`^\s*([A-Z0-9_]+)\s*(?:=\s*([^,]+))?,?`)
)

// ExtractDefines collects `#define NAME VALUE` lines whose name carries
// prefix, mapping each name to its raw replacement text with trailing
// comments and whitespace trimmed. Object-like defines without a value are
// ignored.
func ExtractDefines(text, prefix string) map[string]string {
	constants := make(map[string]string)
	for _, raw := range strings.Split(text, "\n") {
		m := defineRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil || !strings.HasPrefix(m[1], prefix) {
			continue
		}
		constants[m[1]] = strings.TrimSpace(m[2])
	}
	return constants
}

// ExtractEnumNames collects the names of enum entries carrying prefix. The
// scan switches on when prefix first appears and off at the closing brace
// of that enum, matching how the constant headers lay out their enums.
func ExtractEnumNames(text, prefix string) []string {
	var names []string
	inside := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.Contains(line, prefix) {
			inside = true
		}
		if !inside {
			continue
		}
		if m := enumEntryRe.FindStringSubmatch(line); m != nil && strings.HasPrefix(m[1], prefix) {
			names = append(names, m[1])
		}
		if strings.HasPrefix(line, "}") {
			inside = false
		}
	}
	return names
}

// ExtractGuardedKeys maps every `[KEY]` occurrence between an
// `#if <guardPrefix>...` line and its closing `#endif` to the guard macro.
// KEY must match keyPattern. Keys outside any guard are not reported.
func ExtractGuardedKeys(text, guardPrefix, keyPattern string) (map[string]string, error) {
	keyRe, err := regexp.Compile(`^\[(` + keyPattern + `)\]`)
	if err != nil {
		return nil, &ParseError{Decoder: "guarded-key scanner", Fragment: keyPattern, Message: "invalid key pattern"}
	}
	mapping := make(map[string]string)
	guard := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#if "+guardPrefix):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				guard = fields[1]
			}
		case strings.HasPrefix(line, "#endif"):
			if strings.Contains(line, guardPrefix) {
				guard = ""
			}
		default:
			if guard == "" {
				continue
			}
			if m := keyRe.FindStringSubmatch(line); m != nil {
				mapping[m[1]] = guard
			}
		}
	}
	return mapping, nil
}

// EnvironmentFromDefines builds an Environment chained onto base holding
// every define whose replacement text evaluates to an integer against
// base. Defines that do not evaluate (string literals, unresolved macros)
// are left out.
func EnvironmentFromDefines(defines map[string]string, base *Environment) *Environment {
	if base == nil {
		base = DefaultEnv()
	}
	env := NewEnv(base)
	for name, value := range defines {
		if n, err := EvaluateWith(value, base); err == nil {
			env.Define(name, n)
		}
	}
	return env
}

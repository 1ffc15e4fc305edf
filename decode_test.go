package cinit

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"underscore macro", `_("Bulbasaur")`, "Bulbasaur"},
		{"plain parens", `("Seed")`, "Seed"},
		{"adjacent literals", `COMPOUND_STRING("A strange seed was\n" "planted on its back.")`, "A strange seed was\nplanted on its back."},
		{"escaped quote", `"say \"hi\""`, `say "hi"`},
		{"tab escape", `"a\tb"`, "a\tb"},
		{"no literal passes through", "SPECIES_NONE", "SPECIES_NONE"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeString(tt.raw); got != tt.want {
				t.Errorf("DecodeString(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeMacroArgs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"two args", "MON_TYPES(TYPE_GRASS, TYPE_POISON)", []string{"TYPE_GRASS", "TYPE_POISON"}},
		{"nested call", "FOO(BAR(1, 2), 3)", []string{"BAR(1, 2)", "3"}},
		{"no parens is single arg", "GROWTH_MEDIUM_FAST", []string{"GROWTH_MEDIUM_FAST"}},
		{"empty args", "FOO()", nil},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMacroArgs(tt.raw)
			if err != nil {
				t.Fatalf("DecodeMacroArgs(%q) failed: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeMacroArgs(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}

	var parseErr *ParseError
	if _, err := DecodeMacroArgs("FOO("); !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %v", err)
	}
	if _, err := DecodeMacroArgs(")FOO("); !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestDecodeBraceList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"wrapped", "{ ABILITY_OVERGROW, ABILITY_NONE }", []string{"ABILITY_OVERGROW", "ABILITY_NONE"}},
		{"bare", "A, B", []string{"A", "B"}},
		{"nested kept whole", "{ {1, 2}, {3, 4} }", []string{"{1, 2}", "{3, 4}"}},
		{"empty list", "{}", nil},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBraceList(tt.raw)
			if err != nil {
				t.Fatalf("DecodeBraceList(%q) failed: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeBraceList(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}

	var parseErr *ParseError
	if _, err := DecodeBraceList("{ A, B"); !errors.As(err, &parseErr) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

const evolutionsRaw = `EVOLUTION({EVO_LEVEL, 16, SPECIES_IVYSAUR},
                     {EVO_ITEM, ITEM_MOON_STONE, SPECIES_NIDOQUEEN,
                      CONDITIONS({IF_MIN_FRIENDSHIP, 220}, {IF_TIME, TIME_NIGHT})})`

func TestDecodeEntryList(t *testing.T) {
	entries, err := DecodeEntryList(evolutionsRaw)
	if err != nil {
		t.Fatalf("DecodeEntryList failed: %v", err)
	}
	want := []EntryTuple{
		{Method: "EVO_LEVEL", Parameter: "16", Target: "SPECIES_IVYSAUR"},
		{
			Method:     "EVO_ITEM",
			Parameter:  "ITEM_MOON_STONE",
			Target:     "SPECIES_NIDOQUEEN",
			Conditions: []string{"IF_MIN_FRIENDSHIP 220", "IF_TIME TIME_NIGHT"},
		},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %#v, want %#v", entries, want)
	}
}

func TestDecodeEntryListNull(t *testing.T) {
	for _, raw := range []string{"EVOLUTION(NULL)", "NULL", "", "   "} {
		entries, err := DecodeEntryList(raw)
		if err != nil {
			t.Fatalf("DecodeEntryList(%q) failed: %v", raw, err)
		}
		if entries != nil {
			t.Errorf("DecodeEntryList(%q) = %#v, want nil", raw, entries)
		}
	}
}

func TestDecodeEntryListVerbatimTrailingPart(t *testing.T) {
	entries, err := DecodeEntryList("{EVO_LEVEL, 42, SPECIES_GYARADOS, EXTRA_FLAG}")
	if err != nil {
		t.Fatalf("DecodeEntryList failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Conditions, []string{"EXTRA_FLAG"}) {
		t.Errorf("conditions = %#v, want [EXTRA_FLAG]", entries[0].Conditions)
	}
}

func TestDecodeEntryListKeyword(t *testing.T) {
	entries, err := DecodeEntryListKeyword("{METHOD_A, 1, TARGET_B, WHEN({COND_X, 5})}", "WHEN")
	if err != nil {
		t.Fatalf("DecodeEntryListKeyword failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !reflect.DeepEqual(entries[0].Conditions, []string{"COND_X 5"}) {
		t.Errorf("conditions = %#v", entries[0].Conditions)
	}
}

func TestDecodeEntryListErrors(t *testing.T) {
	var parseErr *ParseError
	if _, err := DecodeEntryList("{EVO_LEVEL, 16}"); !errors.As(err, &parseErr) {
		t.Errorf("short entry: expected ParseError, got %v", err)
	}
	if _, err := DecodeEntryList("{EVO_LEVEL, 16, SPECIES_X"); !errors.As(err, &parseErr) {
		t.Errorf("unclosed group: expected ParseError, got %v", err)
	}
	if _, err := DecodeEntryList("{EVO_LEVEL, 16, SPECIES_X, CONDITIONS({A, 1}"); !errors.As(err, &parseErr) {
		t.Errorf("unclosed conditions: expected ParseError, got %v", err)
	}
}

// Decoding a re-serialized entry list yields the same tuples.
func TestDecodeEntryListIdempotent(t *testing.T) {
	first, err := DecodeEntryList(evolutionsRaw)
	if err != nil {
		t.Fatalf("DecodeEntryList failed: %v", err)
	}
	var groups []string
	for _, entry := range first {
		parts := []string{entry.Method, entry.Parameter, entry.Target}
		if len(entry.Conditions) > 0 {
			var conds []string
			for _, cond := range entry.Conditions {
				conds = append(conds, "{"+strings.ReplaceAll(cond, " ", ", ")+"}")
			}
			parts = append(parts, "CONDITIONS("+strings.Join(conds, ", ")+")")
		}
		groups = append(groups, "{"+strings.Join(parts, ", ")+"}")
	}
	again, err := DecodeEntryList(strings.Join(groups, ", "))
	if err != nil {
		t.Fatalf("DecodeEntryList round trip failed: %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Errorf("round trip mismatch:\nfirst: %#v\nagain: %#v", first, again)
	}
}

func TestSplitTopLevelIdempotent(t *testing.T) {
	parts := SplitTopLevel("a, {b, c}, FOO(d, e)")
	again := SplitTopLevel(strings.Join(parts, ", "))
	if !reflect.DeepEqual(parts, again) {
		t.Errorf("round trip mismatch: %#v vs %#v", parts, again)
	}
}

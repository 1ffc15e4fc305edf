package cinit

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestExtractBuffers(t *testing.T) {
	buffers := []Buffer{
		{Name: "gen1", Text: "[SPECIES_BULBASAUR] =\n{\n    .baseHP = 45,\n},\n"},
		{Name: "gen2", Text: "[SPECIES_CHIKORITA] =\n{\n    .baseHP = 45,\n    .baseAttack = 49,\n},\n"},
		{Name: "empty", Text: "no entries here"},
	}

	extractor := NewConcurrentExtractor(2)
	results, err := extractor.ExtractBuffers(context.Background(), `SPECIES_[A-Z0-9_]+`, buffers)
	if err != nil {
		t.Fatalf("ExtractBuffers failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// Results come back in input order regardless of worker scheduling.
	for i, result := range results {
		if result.Index != i || result.Name != buffers[i].Name {
			t.Errorf("result %d = {Index: %d, Name: %q}", i, result.Index, result.Name)
		}
		if result.Error != nil {
			t.Errorf("result %d error: %v", i, result.Error)
		}
	}
	if results[0].Entries["SPECIES_BULBASAUR"]["baseHP"] != "45" {
		t.Errorf("gen1 entries = %#v", results[0].Entries)
	}
	if results[1].Entries["SPECIES_CHIKORITA"]["baseAttack"] != "49" {
		t.Errorf("gen2 entries = %#v", results[1].Entries)
	}
	if len(results[2].Entries) != 0 {
		t.Errorf("empty buffer entries = %#v", results[2].Entries)
	}
}

func TestExtractBuffersEmpty(t *testing.T) {
	extractor := NewConcurrentExtractor(0) // 0 falls back to NumCPU
	results, err := extractor.ExtractBuffers(context.Background(), `KEY_[A-Z]+`, nil)
	if err != nil {
		t.Fatalf("ExtractBuffers failed: %v", err)
	}
	if results != nil {
		t.Errorf("results = %#v, want nil", results)
	}
}

func TestExtractAndMerge(t *testing.T) {
	buffers := []Buffer{
		{Name: "base", Text: "[SPECIES_PIKACHU] =\n{\n    .baseHP = 35,\n},\n[SPECIES_RAICHU] =\n{\n    .baseHP = 60,\n},\n"},
		{Name: "override", Text: "[SPECIES_PIKACHU] =\n{\n    .baseHP = 45,\n},\n"},
	}

	extractor := NewConcurrentExtractor(4)
	merged, err := extractor.ExtractAndMerge(context.Background(), `SPECIES_[A-Z0-9_]+`, buffers)
	if err != nil {
		t.Fatalf("ExtractAndMerge failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("got %d keys, want 2: %#v", len(merged), merged)
	}
	// The later buffer wins on key collision.
	if merged["SPECIES_PIKACHU"]["baseHP"] != "45" {
		t.Errorf("SPECIES_PIKACHU baseHP = %q, want 45", merged["SPECIES_PIKACHU"]["baseHP"])
	}
	if merged["SPECIES_RAICHU"]["baseHP"] != "60" {
		t.Errorf("SPECIES_RAICHU baseHP = %q, want 60", merged["SPECIES_RAICHU"]["baseHP"])
	}
}

func TestExtractAndMergeBadPattern(t *testing.T) {
	extractor := NewConcurrentExtractor(1)
	_, err := extractor.ExtractAndMerge(context.Background(), `KEY_[`, []Buffer{{Name: "a", Text: "x"}})
	if err == nil {
		t.Fatal("invalid pattern should fail")
	}
	if !strings.Contains(err.Error(), "failed to scan buffer a") {
		t.Errorf("error should name the buffer: %v", err)
	}
}

func TestBatchEvaluator(t *testing.T) {
	env := NewEnv(DefaultEnv())
	env.Define("BASE", 10)

	evaluator := NewBatchEvaluator(3)
	values, err := evaluator.EvaluateExpressions(context.Background(), []string{
		"BASE * 2",
		"1 << 8",
		"TRUE ? 7 : 0",
	}, env)
	if err != nil {
		t.Fatalf("EvaluateExpressions failed: %v", err)
	}
	if !reflect.DeepEqual(values, []int64{20, 256, 7}) {
		t.Errorf("values = %#v", values)
	}
}

func TestBatchEvaluatorCollectsErrors(t *testing.T) {
	evaluator := NewBatchEvaluator(2)
	_, err := evaluator.EvaluateExpressions(context.Background(), []string{"1 + 1", "1 / 0"}, nil)
	if err == nil {
		t.Fatal("division by zero should fail the batch")
	}
	multi, ok := err.(*MultiError)
	if !ok {
		t.Fatalf("expected *MultiError, got %T", err)
	}
	if len(multi.Errors) != 1 {
		t.Errorf("got %d errors, want 1: %v", len(multi.Errors), multi)
	}
	if !strings.Contains(multi.Errors[0].Error(), "expression 1") {
		t.Errorf("error should carry the expression index: %v", multi.Errors[0])
	}
}

func TestBatchEvaluatorEmpty(t *testing.T) {
	evaluator := NewBatchEvaluator(1)
	values, err := evaluator.EvaluateExpressions(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("EvaluateExpressions failed: %v", err)
	}
	if values != nil {
		t.Errorf("values = %#v, want nil", values)
	}
}

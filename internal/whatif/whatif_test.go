package whatif

import (
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/erabu/internal/models"
)

func sampleTrace() map[string]any {
	return map[string]any{
		"query":  "quantum radar",
		"params": map[string]any{"semantic_weight": 0.5},
		"final": []any{
			map[string]any{
				"doc_id":         "doc-a",
				"title":          "Alpha",
				"semantic_score": 0.9,
				"lexical_score":  0.1,
				"matched_tags":   []any{"radar"},
			},
			map[string]any{
				"doc_id":         "doc-b",
				"title":          "Beta",
				"semantic_score": 0.1,
				"lexical_score":  0.9,
			},
		},
	}
}

func TestSimulateRecomputesScores(t *testing.T) {
	result, err := Simulate(sampleTrace(), nil)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if result.Query != "quantum radar" {
		t.Errorf("query = %q", result.Query)
	}
	if len(result.Final) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Final))
	}
	// Equal blends at weight 0.5; original order breaks the tie.
	for _, row := range result.Final {
		if row.FinalScore != 0.5 {
			t.Errorf("%s final = %v, want 0.5", row.Key, row.FinalScore)
		}
	}
	if result.Final[0].DocID != "doc-a" {
		t.Errorf("first = %s", result.Final[0].DocID)
	}
}

func TestSimulateOverridesMergeFieldWise(t *testing.T) {
	result, err := Simulate(sampleTrace(), map[string]any{"semantic_weight": 1.0})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	// All semantic: doc-a (0.9) ahead of doc-b (0.1).
	if result.Final[0].DocID != "doc-a" || result.Final[0].FinalScore != 0.9 {
		t.Errorf("first = %+v", result.Final[0])
	}

	result, err = Simulate(sampleTrace(), map[string]any{"semantic_weight": 0.0})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	// All lexical: doc-b (0.9) ahead of doc-a (0.1).
	if result.Final[0].DocID != "doc-b" || result.Final[0].FinalScore != 0.9 {
		t.Errorf("first = %+v", result.Final[0])
	}
}

func TestSimulateMalformedTrace(t *testing.T) {
	tests := []struct {
		name  string
		trace map[string]any
	}{
		{"nil trace", nil},
		{"missing final", map[string]any{"query": "q"}},
		{"final not a list", map[string]any{"final": "oops"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Simulate(tt.trace, nil); !errors.Is(err, models.ErrMalformedTrace) {
				t.Errorf("err = %v, want ErrMalformedTrace", err)
			}
		})
	}
}

func TestSimulateMalformedRowsRecovered(t *testing.T) {
	trace := map[string]any{
		"final": []any{
			"not an object",
			map[string]any{"semantic_score": 0.9}, // no doc_id
			map[string]any{"doc_id": "doc-ok", "semantic_score": 0.5, "lexical_score": 0.5},
		},
	}
	result, err := Simulate(trace, nil)
	if err != nil {
		t.Fatalf("malformed rows should be skipped, not raised: %v", err)
	}
	if len(result.Final) != 1 || result.Final[0].DocID != "doc-ok" {
		t.Errorf("final = %+v", result.Final)
	}
}

func TestSimulateInvalidOverride(t *testing.T) {
	_, err := Simulate(sampleTrace(), map[string]any{"semantic_weight": 3.0})
	if !errors.Is(err, models.ErrInvalidTuningParameter) {
		t.Errorf("err = %v, want ErrInvalidTuningParameter", err)
	}
}

func TestSimulateIsPure(t *testing.T) {
	trace := sampleTrace()
	first, err := Simulate(trace, map[string]any{"final_top_k": 1})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	second, err := Simulate(trace, map[string]any{"final_top_k": 1})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated simulation produced different results")
	}
	if !reflect.DeepEqual(trace, sampleTrace()) {
		t.Error("simulation modified the input trace")
	}
}

func TestSimulateDuplicateDocsStayDistinct(t *testing.T) {
	trace := map[string]any{
		"final": []any{
			map[string]any{"doc_id": "dup", "semantic_score": 0.9, "lexical_score": 0.9},
			map[string]any{"doc_id": "dup", "semantic_score": 0.1, "lexical_score": 0.1},
		},
	}
	result, err := Simulate(trace, nil)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(result.Final) != 2 {
		t.Fatalf("got %d rows, duplicates must stay distinct", len(result.Final))
	}
	if result.Final[0].Key == result.Final[1].Key {
		t.Error("duplicate rows share a key")
	}
}

func TestSimulateFinalTopK(t *testing.T) {
	result, err := Simulate(sampleTrace(), map[string]any{"final_top_k": 1})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(result.Final) != 1 {
		t.Errorf("got %d rows, want 1", len(result.Final))
	}
	if result.Params.FinalTopK != 1 {
		t.Errorf("params.final_top_k = %d", result.Params.FinalTopK)
	}
}

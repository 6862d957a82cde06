// Package whatif re-ranks a captured retrieval trace under hypothetical
// tuning parameters. Simulation is pure: it reads only the trace and the
// overrides, touches no index or store, and leaves the trace unmodified.
package whatif

import (
	"fmt"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/tuning"
)

// Row is one simulated result with its recomputed final score.
type Row struct {
	Key           string   `json:"key"`
	DocID         string   `json:"doc_id"`
	Title         string   `json:"title,omitempty"`
	SemanticScore float64  `json:"semantic_score"`
	LexicalScore  float64  `json:"lexical_score"`
	FinalScore    float64  `json:"final_score"`
	MatchedTags   []string `json:"matched_tags,omitempty"`
	OriginalIndex int      `json:"original_index"`
}

// Result is the outcome of one simulation.
type Result struct {
	Query  string                `json:"query"`
	Params models.ResolvedTuning `json:"params"`
	Final  []Row                 `json:"final"`
}

// Simulate re-ranks the rows of a captured trace under the trace's own
// parameters merged field-wise with overrides. The trace must be a usable
// object; individual malformed rows inside it are skipped, not raised.
// Rows are keyed by document ID and original position, so duplicates of the
// same document stay distinct.
func Simulate(trace map[string]any, overrides map[string]any) (*Result, error) {
	if trace == nil {
		return nil, fmt.Errorf("%w: trace is missing", models.ErrMalformedTrace)
	}
	finalRaw, ok := trace["final"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: trace has no final result list", models.ErrMalformedTrace)
	}

	params := map[string]any{}
	if p, ok := trace["params"].(map[string]any); ok {
		for k, v := range p {
			params[k] = v
		}
	}
	for k, v := range overrides {
		params[k] = v
	}
	cfg, err := models.ParseTuningConfig(params)
	if err != nil {
		return nil, err
	}
	// Simulation always applies the pool-union algorithm, even when the
	// original retrieval ran in pass-through mode.
	cfg.Explicit = true

	rows := make([]Row, 0, len(finalRaw))
	candidates := make([]models.RetrievalCandidate, 0, len(finalRaw))
	for i, raw := range finalRaw {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		docID, _ := obj["doc_id"].(string)
		if docID == "" {
			continue
		}
		row := Row{
			Key:           fmt.Sprintf("%s#%d", docID, i),
			DocID:         docID,
			SemanticScore: looseFloat(obj["semantic_score"]),
			LexicalScore:  looseFloat(obj["lexical_score"]),
			OriginalIndex: i,
		}
		if title, ok := obj["title"].(string); ok {
			row.Title = title
		}
		if tags, ok := obj["matched_tags"].([]any); ok {
			for _, t := range tags {
				if tag, ok := t.(string); ok {
					row.MatchedTags = append(row.MatchedTags, tag)
				}
			}
		}
		rows = append(rows, row)
		candidates = append(candidates, models.RetrievalCandidate{
			ChunkID:       row.Key,
			DocumentID:    docID,
			LexicalScore:  row.LexicalScore,
			SemanticScore: row.SemanticScore,
		})
	}

	sel, err := tuning.Select(candidates, cfg, -1)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]Row, len(rows))
	for _, r := range rows {
		byKey[r.Key] = r
	}
	final := make([]Row, 0, len(sel.Results))
	for _, c := range sel.Results {
		row := byKey[c.ChunkID]
		row.FinalScore = c.CombinedScore
		final = append(final, row)
	}

	result := &Result{Params: sel.Tuning, Final: final}
	if q, ok := trace["query"].(string); ok {
		result.Query = q
	}
	return result, nil
}

func looseFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

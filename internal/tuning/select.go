// Package tuning applies caller-supplied ranking parameters: pool caps,
// semantic weighting, and final truncation. Ordering is total; equal scores
// fall back to input order, then chunk ID, so the same inputs always produce
// the same output sequence.
package tuning

import (
	"fmt"
	"sort"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/pkg/utils"
)

// Selection is the outcome of one tuned ranking pass.
type Selection struct {
	// Results is the final ordered candidate list after truncation.
	Results []models.RetrievalCandidate

	// LexicalPool and SemanticPool hold the chunk IDs each capped pool
	// contributed to the union, in pool order.
	LexicalPool  []string
	SemanticPool []string

	// Tuning echoes the parameters that were actually applied.
	Tuning models.ResolvedTuning
}

// tieLess is the shared tie-break for equal scores: input order first, then
// lexicographic chunk ID.
func tieLess(a, b *models.RetrievalCandidate) bool {
	if a.InputOrder != b.InputOrder {
		return a.InputOrder < b.InputOrder
	}
	return a.ChunkID < b.ChunkID
}

// Select ranks candidates under cfg. Without explicit tuning the upstream
// ordering is preserved and only the default limit applies. With explicit
// tuning each candidate gets a combined score, the lexical and semantic
// pools are capped independently, their union is re-sorted by combined
// score, and the final list is truncated to final_top_k.
func Select(candidates []models.RetrievalCandidate, cfg models.TuningConfig, defaultLimit int) (*Selection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cands := make([]models.RetrievalCandidate, len(candidates))
	copy(cands, candidates)
	for i := range cands {
		cands[i].InputOrder = i
	}

	if !cfg.Explicit {
		if defaultLimit > 0 && len(cands) > defaultLimit {
			cands = cands[:defaultLimit]
		}
		return &Selection{
			Results: cands,
			Tuning: models.ResolvedTuning{
				Explicit:       false,
				SemanticWeight: cfg.SemanticWeight,
				SemanticK:      -1,
				LexicalK:       -1,
				FinalTopK:      resolvedCap(nil, defaultLimit),
			},
		}, nil
	}

	w := cfg.SemanticWeight
	for i := range cands {
		cands[i].CombinedScore = utils.Round4(w*cands[i].SemanticScore + (1-w)*cands[i].LexicalScore)
	}

	lexPool := topPool(cands, cfg.LexicalK, func(c *models.RetrievalCandidate) float64 { return c.LexicalScore })
	semPool := topPool(cands, cfg.SemanticK, func(c *models.RetrievalCandidate) float64 { return c.SemanticScore })

	// Union by chunk ID. Both pools index into the same candidate slice, so
	// a chunk present in both contributes exactly one entry.
	seen := make(map[string]*models.RetrievalCandidate, len(lexPool)+len(semPool))
	union := make([]*models.RetrievalCandidate, 0, len(lexPool)+len(semPool))
	for _, pool := range [][]*models.RetrievalCandidate{lexPool, semPool} {
		for _, c := range pool {
			if _, ok := seen[c.ChunkID]; ok {
				continue
			}
			seen[c.ChunkID] = c
			union = append(union, c)
		}
	}

	sort.SliceStable(union, func(i, j int) bool {
		if union[i].CombinedScore != union[j].CombinedScore {
			return union[i].CombinedScore > union[j].CombinedScore
		}
		return tieLess(union[i], union[j])
	})

	finalCap := defaultLimit
	if finalCap <= 0 {
		finalCap = -1
	}
	if cfg.FinalTopK != nil {
		finalCap = *cfg.FinalTopK
	}
	results := make([]models.RetrievalCandidate, 0, len(union))
	for _, c := range union {
		results = append(results, *c)
	}
	if finalCap >= 0 && len(results) > finalCap {
		results = results[:finalCap]
	}

	sel := &Selection{
		Results:      results,
		LexicalPool:  poolIDs(lexPool),
		SemanticPool: poolIDs(semPool),
		Tuning: models.ResolvedTuning{
			Explicit:       true,
			SemanticWeight: w,
			SemanticK:      resolvedCap(cfg.SemanticK, -1),
			LexicalK:       resolvedCap(cfg.LexicalK, -1),
			FinalTopK:      finalCap,
		},
	}
	return sel, nil
}

// topPool returns pointers to the top-k candidates by the given score,
// descending, ties broken by tieLess. A nil cap means unlimited; zero means
// an empty pool.
func topPool(cands []models.RetrievalCandidate, k *int, score func(*models.RetrievalCandidate) float64) []*models.RetrievalCandidate {
	if k != nil && *k == 0 {
		return nil
	}
	pool := make([]*models.RetrievalCandidate, len(cands))
	for i := range cands {
		pool[i] = &cands[i]
	}
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := score(pool[i]), score(pool[j])
		if si != sj {
			return si > sj
		}
		return tieLess(pool[i], pool[j])
	})
	if k != nil && len(pool) > *k {
		pool = pool[:*k]
	}
	return pool
}

func poolIDs(pool []*models.RetrievalCandidate) []string {
	ids := make([]string, len(pool))
	for i, c := range pool {
		ids[i] = c.ChunkID
	}
	return ids
}

func resolvedCap(k *int, fallback int) int {
	if k != nil {
		return *k
	}
	return fallback
}

// ClassicOrder sorts candidates the way the pre-tuning pipeline did: deep
// ingestion before quick, higher keyword overlap first, then page number,
// chunk index, and finally input order. Used when no tuning is in play and
// callers want the legacy presentation order.
func ClassicOrder(candidates []models.RetrievalCandidate) []models.RetrievalCandidate {
	out := make([]models.RetrievalCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].InputOrder = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if pa, pb := phaseRank(a.IngestionPhase), phaseRank(b.IngestionPhase); pa != pb {
			return pa < pb
		}
		if a.KeywordOverlap != b.KeywordOverlap {
			return a.KeywordOverlap > b.KeywordOverlap
		}
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		return a.InputOrder < b.InputOrder
	})
	return out
}

func phaseRank(p models.IngestionPhase) int {
	switch p {
	case models.PhaseDeep:
		return 0
	case models.PhaseQuick:
		return 1
	default:
		return 2
	}
}

// ResolvedString renders the resolved tuning for log lines.
func ResolvedString(t models.ResolvedTuning) string {
	return fmt.Sprintf("explicit=%v weight=%.4f semantic_k=%d lexical_k=%d final_top_k=%d",
		t.Explicit, t.SemanticWeight, t.SemanticK, t.LexicalK, t.FinalTopK)
}

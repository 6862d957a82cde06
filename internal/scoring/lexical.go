// Package scoring computes per-chunk lexical and semantic relevance signals.
// Every score leaving this package is rounded to four decimals and clamped
// to [0,1]; downstream selection never re-normalizes.
package scoring

import (
	"strings"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/pkg/utils"
)

// LexicalScores computes the keyword-overlap score for each chunk: the count
// of query keywords present in the chunk's keyword set, divided by the
// maximum overlap across the batch. The divisor is floored at 1 so a batch
// with no overlap anywhere scores all zeros instead of dividing by zero.
// Matching is case-insensitive. Results are keyed by chunk ID, alongside the
// raw overlap counts.
func LexicalScores(queryKeywords []string, chunks []models.Chunk) (scores map[string]float64, overlaps map[string]int) {
	querySet := make(map[string]struct{}, len(queryKeywords))
	for _, kw := range queryKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			querySet[kw] = struct{}{}
		}
	}

	overlaps = make(map[string]int, len(chunks))
	maxOverlap := 0
	for i := range chunks {
		chunkSet := make(map[string]struct{}, len(chunks[i].Keywords))
		for _, kw := range chunks[i].Keywords {
			chunkSet[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
		}
		count := 0
		for kw := range querySet {
			if _, ok := chunkSet[kw]; ok {
				count++
			}
		}
		overlaps[chunks[i].ChunkID()] = count
		if count > maxOverlap {
			maxOverlap = count
		}
	}

	divisor := maxOverlap
	if divisor < 1 {
		divisor = 1
	}
	scores = make(map[string]float64, len(chunks))
	for id, count := range overlaps {
		ratio := float64(count) / float64(divisor)
		if ratio > 1 {
			ratio = 1
		}
		scores[id] = utils.Round4(ratio)
	}
	return scores, overlaps
}

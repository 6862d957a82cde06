// Package explain turns a ranking pass into an audit trace: one decision per
// candidate from a closed vocabulary, plus a display-only modality summary.
package explain

import (
	"path/filepath"
	"strings"

	"github.com/hyperjump/erabu/internal/models"
)

// Input captures everything the trace builder needs from one retrieval.
type Input struct {
	Query      string
	Plan       string
	TrustLevel string
	Tuning     models.ResolvedTuning

	// Candidates is every scored candidate in ranked order; Selected is the
	// subset that made the final list. Blocked lists chunk IDs excluded by
	// the quality gate before scoring.
	Candidates []models.RetrievalCandidate
	Selected   []models.RetrievalCandidate
	Blocked    []models.RetrievalCandidate
}

// Build produces the explain trace. Every candidate receives exactly one
// decision: selected/top_k for final results, excluded/blocked for quality
// gate rejections, excluded/filtered for zero keyword overlap, and
// excluded/lower_rank for everything else. When no scored candidates were
// captured the trace is synthesized from the selected results alone and
// marked as a fallback.
func Build(in Input) *models.ExplainTrace {
	trace := &models.ExplainTrace{
		Query:      in.Query,
		Plan:       in.Plan,
		TrustLevel: in.TrustLevel,
		Tuning:     in.Tuning,
	}

	if len(in.Candidates) == 0 && len(in.Blocked) == 0 {
		trace.Fallback = true
		for i := range in.Selected {
			trace.Candidates = append(trace.Candidates, candidateRow(&in.Selected[i], i+1, models.DecisionSelected, models.ReasonTopK))
		}
		trace.Modality = summarize(trace.Candidates)
		return trace
	}

	selected := make(map[string]struct{}, len(in.Selected))
	for i := range in.Selected {
		selected[in.Selected[i].ChunkID] = struct{}{}
	}

	rank := 0
	for i := range in.Candidates {
		c := &in.Candidates[i]
		rank++
		decision, reason := models.DecisionExcluded, models.ReasonLowerRank
		if _, ok := selected[c.ChunkID]; ok {
			decision, reason = models.DecisionSelected, models.ReasonTopK
		} else if c.KeywordOverlap == 0 && c.SemanticScore == 0 {
			reason = models.ReasonFiltered
		}
		trace.Candidates = append(trace.Candidates, candidateRow(c, rank, decision, reason))
	}
	for i := range in.Blocked {
		rank++
		trace.Candidates = append(trace.Candidates, candidateRow(&in.Blocked[i], rank, models.DecisionExcluded, models.ReasonBlocked))
	}
	trace.Modality = summarize(trace.Candidates)
	return trace
}

func candidateRow(c *models.RetrievalCandidate, rank int, decision models.Decision, reason models.Reason) models.ExplainCandidate {
	return models.ExplainCandidate{
		ChunkID:        c.ChunkID,
		DocumentID:     c.DocumentID,
		SourceName:     c.SourceName,
		PageNumber:     c.PageNumber,
		Rank:           rank,
		KeywordOverlap: c.KeywordOverlap,
		LexicalScore:   c.LexicalScore,
		SemanticScore:  c.SemanticScore,
		CombinedScore:  c.CombinedScore,
		Decision:       decision,
		Reason:         reason,
		Modality:       SourceModality(c.SourceName),
	}
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {},
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".m4a": {}, ".flac": {}, ".ogg": {},
}

// SourceModality classifies a source file name by extension. The result is
// display-only and never feeds ranking.
func SourceModality(sourceName string) models.Modality {
	ext := strings.ToLower(filepath.Ext(sourceName))
	if _, ok := imageExtensions[ext]; ok {
		return models.ModalityImage
	}
	if _, ok := audioExtensions[ext]; ok {
		return models.ModalityAudio
	}
	return models.ModalityText
}

// summarize rolls the shown (selected) rows into one trace-level modality:
// the shared modality when they all agree, mixed when they differ, text when
// nothing was shown.
func summarize(candidates []models.ExplainCandidate) models.Modality {
	distinct := make(map[models.Modality]struct{})
	for i := range candidates {
		if candidates[i].Decision != models.DecisionSelected {
			continue
		}
		distinct[candidates[i].Modality] = struct{}{}
	}
	if len(distinct) == 0 {
		return models.ModalityText
	}
	if len(distinct) > 1 {
		return models.ModalityMixed
	}
	for m := range distinct {
		return m
	}
	return models.ModalityText
}

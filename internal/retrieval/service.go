// Package retrieval composes scoring, tuned selection, and explain tracing
// into the single Retrieve operation the server and CLI expose.
package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/canonical"
	"github.com/hyperjump/erabu/internal/explain"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/scoring"
	"github.com/hyperjump/erabu/internal/tuning"
)

// Request is one retrieval call.
type Request struct {
	Query      string              `json:"query"`
	Keywords   []string            `json:"keywords"`
	Chunks     []models.Chunk      `json:"chunks"`
	Tuning     models.TuningConfig `json:"tuning"`
	Plan       string              `json:"plan,omitempty"`
	TrustLevel string              `json:"trust_level,omitempty"`
}

// Response is the ranked result set with its audit trace. DeterminismHash
// digests the canonical form of the results and trace; two runs over the
// same request always produce the same hash.
type Response struct {
	Results         []models.RetrievalCandidate `json:"results"`
	Trace           *models.ExplainTrace        `json:"trace"`
	LexicalPool     []string                    `json:"lexical_pool,omitempty"`
	SemanticPool    []string                    `json:"semantic_pool,omitempty"`
	DeterminismHash string                      `json:"determinism_hash"`
}

// Service runs retrieval over caller-supplied chunks.
type Service struct {
	scorer       *scoring.Scorer
	defaultLimit int
	logger       *zap.Logger
}

// NewService creates a retrieval service. defaultLimit caps results when the
// caller sends no tuning; non-positive means unlimited.
func NewService(scorer *scoring.Scorer, defaultLimit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scorer: scorer, defaultLimit: defaultLimit, logger: logger}
}

// Retrieve scores, ranks, and explains one query over the request's chunks.
func (s *Service) Retrieve(ctx context.Context, req Request) (*Response, error) {
	if err := req.Tuning.Validate(); err != nil {
		return nil, err
	}

	// Quality gate: blocked chunks never reach scoring but still appear in
	// the explain trace with their own reason.
	eligible := make([]models.Chunk, 0, len(req.Chunks))
	var blocked []models.RetrievalCandidate
	for i := range req.Chunks {
		c := req.Chunks[i]
		if c.QualityTier == models.QualityBlock {
			blocked = append(blocked, candidateFromChunk(&c, 0, 0))
			continue
		}
		eligible = append(eligible, c)
	}

	lexScores, overlaps := scoring.LexicalScores(req.Keywords, eligible)
	semScores, semPool, err := s.scorer.SemanticScores(ctx, req.Query, eligible)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.RetrievalCandidate, 0, len(eligible))
	for i := range eligible {
		c := &eligible[i]
		id := c.ChunkID()
		cand := candidateFromChunk(c, lexScores[id], semScores[id])
		cand.KeywordOverlap = overlaps[id]
		candidates = append(candidates, cand)
	}

	sel, err := tuning.Select(candidates, req.Tuning, s.defaultLimit)
	if err != nil {
		return nil, err
	}

	trace := explain.Build(explain.Input{
		Query:      req.Query,
		Plan:       req.Plan,
		TrustLevel: req.TrustLevel,
		Tuning:     sel.Tuning,
		Candidates: candidates,
		Selected:   sel.Results,
		Blocked:    blocked,
	})

	resp := &Response{
		Results:      sel.Results,
		Trace:        trace,
		LexicalPool:  sel.LexicalPool,
		SemanticPool: sel.SemanticPool,
	}
	if len(resp.SemanticPool) == 0 && len(semPool) > 0 {
		resp.SemanticPool = semPool
	}

	hash, err := canonical.Hash(struct {
		Results []models.RetrievalCandidate `json:"results"`
		Trace   *models.ExplainTrace        `json:"trace"`
	}{resp.Results, resp.Trace})
	if err != nil {
		return nil, fmt.Errorf("failed to hash response: %w", err)
	}
	resp.DeterminismHash = hash

	s.logger.Debug("retrieval complete",
		zap.String("query", req.Query),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(resp.Results)),
		zap.String("tuning", tuning.ResolvedString(sel.Tuning)),
		zap.String("determinism_hash", hash))
	return resp, nil
}

func candidateFromChunk(c *models.Chunk, lexical, semantic float64) models.RetrievalCandidate {
	return models.RetrievalCandidate{
		ChunkID:        c.ChunkID(),
		DocumentID:     c.DocumentID,
		SourceName:     c.SourceName,
		PageNumber:     c.PageNumber,
		ChunkIndex:     c.ChunkIndex,
		IngestionPhase: c.IngestionPhase,
		LexicalScore:   lexical,
		SemanticScore:  semantic,
	}
}

// Package models defines the core data structures exchanged with external
// collaborators: indexed chunks, tuning parameters, citations, preview routes,
// and explain traces. All loose external input is parsed into these types at
// the boundary; internal components never re-coerce.
package models

import "fmt"

// QualityTier is the ingestion quality gate assigned to a chunk.
type QualityTier string

const (
	QualityPass  QualityTier = "pass"
	QualityWarn  QualityTier = "warn"
	QualityBlock QualityTier = "block"
)

// IngestionPhase marks which ingestion pass produced a chunk.
type IngestionPhase string

const (
	PhaseDeep  IngestionPhase = "deep"
	PhaseQuick IngestionPhase = "quick"
)

// Span is a half-open character range [StartChar, EndChar).
type Span struct {
	StartChar int `json:"start_char"`
	EndChar   int `json:"end_char"`
}

// Valid reports whether the span covers at least one character.
func (s Span) Valid() bool {
	return s.StartChar >= 0 && s.StartChar < s.EndChar
}

// Highlight is an optional ingestion-supplied highlight anchor for a chunk.
// Status "exact" means the span points at the chunk's exact source location.
type Highlight struct {
	Status string `json:"status"`
	Span   *Span  `json:"span,omitempty"`
}

// Chunk is an immutable unit of indexed document text, owned by the external
// indexing collaborator. This core only reads it.
type Chunk struct {
	DocumentID     string         `json:"document_id"`
	SourceName     string         `json:"source_name,omitempty"`
	PageNumber     int            `json:"page_number"`
	ChunkIndex     int            `json:"chunk_index"`
	Text           string         `json:"text"`
	Keywords       []string       `json:"keywords"`
	QualityTier    QualityTier    `json:"quality_tier"`
	IngestionPhase IngestionPhase `json:"ingestion_phase"`

	// Optional location signals used for citation preview targets.
	Span           *Span      `json:"span,omitempty"`
	Highlight      *Highlight `json:"highlight,omitempty"`
	BBox           []float64  `json:"bbox,omitempty"`
	TokenPositions []int      `json:"token_positions,omitempty"`
	Anchor         string     `json:"anchor,omitempty"`
}

// ChunkID derives the globally unique chunk identifier.
func (c *Chunk) ChunkID() string {
	return fmt.Sprintf("%s:%d", c.DocumentID, c.ChunkIndex)
}

// TraceRef is a scoring-time reference to a chunk's provenance, carried in
// the retrieval trace and preferred over index metadata when resolving
// citations (it is fresher).
type TraceRef struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	PageNumber int    `json:"page_number"`
}

package models

// RetrievalCandidate is one scored chunk flowing through ranking. All score
// fields are rounded to four decimals and clamped to [0,1] by the scorers
// before a candidate is handed to selection.
type RetrievalCandidate struct {
	ChunkID        string         `json:"chunk_id"`
	DocumentID     string         `json:"document_id"`
	SourceName     string         `json:"source_name,omitempty"`
	PageNumber     int            `json:"page_number"`
	ChunkIndex     int            `json:"chunk_index"`
	IngestionPhase IngestionPhase `json:"ingestion_phase,omitempty"`

	KeywordOverlap int     `json:"keyword_overlap"`
	LexicalScore   float64 `json:"lexical_score"`
	SemanticScore  float64 `json:"semantic_score"`
	CombinedScore  float64 `json:"combined_score"`

	// InputOrder is the candidate's position in the caller-supplied slice.
	// It is the primary tie key and makes every ordering total.
	InputOrder int `json:"-"`
}

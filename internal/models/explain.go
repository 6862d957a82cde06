package models

// Decision is the closed outcome vocabulary for per-candidate explanations.
type Decision string

const (
	DecisionSelected Decision = "selected"
	DecisionExcluded Decision = "excluded"
)

// Reason is the closed reason vocabulary paired with a Decision.
type Reason string

const (
	ReasonTopK      Reason = "top_k"
	ReasonLowerRank Reason = "lower_rank"
	ReasonFiltered  Reason = "filtered"
	ReasonBlocked   Reason = "blocked"
)

// Modality is a display-only source classification derived from file
// extensions. It never influences ranking.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
	ModalityMixed Modality = "mixed"
)

// ExplainCandidate is one row of an explain trace: the candidate's raw
// signals and scores together with the decision made about it and why.
// The semantic signal serializes as vector_score, the name downstream
// consumers of these traces expect.
type ExplainCandidate struct {
	ChunkID        string   `json:"chunk_id"`
	DocumentID     string   `json:"document_id"`
	SourceName     string   `json:"source_name,omitempty"`
	PageNumber     int      `json:"page_number"`
	Rank           int      `json:"rank"`
	KeywordOverlap int      `json:"keyword_overlap"`
	LexicalScore   float64  `json:"lexical_score"`
	SemanticScore  float64  `json:"vector_score"`
	CombinedScore  float64  `json:"combined_score"`
	Decision       Decision `json:"decision"`
	Reason         Reason   `json:"reason"`
	Modality       Modality `json:"modality"`
}

// ResolvedTuning echoes the parameters that were actually applied, after
// defaults. Pool caps of -1 mean unlimited.
type ResolvedTuning struct {
	Explicit       bool    `json:"explicit"`
	SemanticWeight float64 `json:"semantic_weight"`
	SemanticK      int     `json:"semantic_k"`
	LexicalK       int     `json:"lexical_k"`
	FinalTopK      int     `json:"final_top_k"`
}

// ExplainTrace is the full audit record for one retrieval: query, plan,
// applied tuning, and a per-candidate decision list.
type ExplainTrace struct {
	Query      string             `json:"query"`
	Plan       string             `json:"plan,omitempty"`
	TrustLevel string             `json:"trust_level,omitempty"`
	Tuning     ResolvedTuning     `json:"tuning"`
	Modality   Modality           `json:"modality"`
	Fallback   bool               `json:"fallback"`
	Candidates []ExplainCandidate `json:"candidates"`
}

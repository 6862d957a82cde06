package models

// PreviewTargetKind names the location signal a citation points at.
type PreviewTargetKind string

const (
	TargetSpan           PreviewTargetKind = "span"
	TargetBBox           PreviewTargetKind = "bbox"
	TargetTokenPositions PreviewTargetKind = "token_positions"
	TargetAnchor         PreviewTargetKind = "anchor"
	TargetNone           PreviewTargetKind = "none"
)

// PreviewTarget is the single best location signal chosen for a citation,
// in priority order: explicit span, exact highlight span, bbox, token
// positions, anchor, none.
type PreviewTarget struct {
	Kind           PreviewTargetKind `json:"kind"`
	Span           *Span             `json:"span,omitempty"`
	BBox           []float64         `json:"bbox,omitempty"`
	TokenPositions []int             `json:"token_positions,omitempty"`
	Anchor         string            `json:"anchor,omitempty"`
}

// Citation binds one answer mention to its source chunk. CitationID is a
// stable digest over (doc_id, page_number, chunk_id, mention_index), so the
// same inputs always produce the same identifier.
type Citation struct {
	CitationID    string            `json:"citation_id"`
	DocID         string            `json:"doc_id"`
	PageNumber    int               `json:"page_number"`
	ChunkID       string            `json:"chunk_id"`
	MentionIndex  int               `json:"mention_index"`
	AnswerSpan    Span              `json:"answer_span"`
	PreviewTarget PreviewTarget     `json:"preview_target"`
	Extensions    map[string]string `json:"extensions,omitempty"`
}

// HighlightMode names how a preview page should render the cited region.
type HighlightMode string

const (
	HighlightBBox           HighlightMode = "bbox"
	HighlightSpan           HighlightMode = "span"
	HighlightTokenPositions HighlightMode = "token_positions"
	HighlightAnchor         HighlightMode = "anchor"
	HighlightUnavailable    HighlightMode = "unavailable"
)

// PreviewRoute is a ready-to-render page preview link for one citation.
type PreviewRoute struct {
	CitationID    string        `json:"citation_id"`
	DocumentID    string        `json:"document_id"`
	PageNumber    int           `json:"page_number"`
	ChunkID       string        `json:"chunk_id"`
	PreviewURL    string        `json:"preview_url"`
	DeepLinkQuery string        `json:"deep_link_query"`
	HighlightMode HighlightMode `json:"highlight_mode"`
	ColorIndex    int           `json:"color_index"`
	Snippet       string        `json:"snippet,omitempty"`
}

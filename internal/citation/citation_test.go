package citation

import (
	"reflect"
	"testing"

	"github.com/hyperjump/erabu/internal/models"
)

func TestParseMarkers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{"single", "See [d1:0] for details.", []string{"d1:0"}},
		{"comma list", "Both [d1:0, d2:1] agree.", []string{"d1:0", "d2:1"}},
		{"repeat kept", "First [d1:0] then again [d1:0].", []string{"d1:0", "d1:0"}},
		{"none", "No citations here.", nil},
		{"empty brackets skipped", "Odd [ , ] marker.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMarkers(tt.answer)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseMarkers(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestCitationIDStable(t *testing.T) {
	id1 := CitationID("doc-1", 3, "doc-1:5", 0)
	id2 := CitationID("doc-1", 3, "doc-1:5", 0)
	if id1 != id2 {
		t.Error("same inputs produced different citation IDs")
	}
	if len(id1) != 16 {
		t.Errorf("citation ID length = %d, want 16", len(id1))
	}
	if CitationID("doc-1", 3, "doc-1:5", 1) == id1 {
		t.Error("mention index should change the citation ID")
	}
}

func testChunks() []models.Chunk {
	return []models.Chunk{
		{DocumentID: "d1", PageNumber: 1, ChunkIndex: 0, Text: "alpha text"},
		{DocumentID: "d2", PageNumber: 4, ChunkIndex: 1, Text: "beta text"},
	}
}

func TestMapAnswerCitationsSpansAndMentions(t *testing.T) {
	answer := "Alpha says [d1:0]. Beta says [d2:1]. Alpha again [d1:0]."
	citations := MapAnswerCitations(answer, nil, nil, testChunks())
	if len(citations) != 3 {
		t.Fatalf("got %d citations, want 3", len(citations))
	}

	// Output is sorted by page, so the two d1 mentions come first. The same
	// chunk twice means the citation ID is the deciding key between them.
	if citations[0].ChunkID != "d1:0" || citations[1].ChunkID != "d1:0" {
		t.Errorf("first two = %+v, %+v", citations[0], citations[1])
	}
	if citations[0].CitationID >= citations[1].CitationID {
		t.Errorf("same-chunk mentions out of ID order: %s then %s",
			citations[0].CitationID, citations[1].CitationID)
	}
	if citations[2].ChunkID != "d2:1" || citations[2].MentionIndex != 1 || citations[2].PageNumber != 4 {
		t.Errorf("third = %+v", citations[2])
	}

	// Mention index is the marker's global position in the answer, and the
	// forward scan makes the later mention's span start after the earlier
	// one's.
	byMention := make(map[int]models.Span)
	for _, c := range citations {
		if c.ChunkID == "d1:0" {
			byMention[c.MentionIndex] = c.AnswerSpan
		}
	}
	first, okFirst := byMention[0]
	second, okSecond := byMention[2]
	if !okFirst || !okSecond {
		t.Fatalf("d1:0 mention indexes = %v, want 0 and 2", byMention)
	}
	if !first.Valid() || !second.Valid() {
		t.Fatalf("spans = %+v, %+v", first, second)
	}
	if second.StartChar <= first.StartChar {
		t.Errorf("mention spans not monotonic: %+v then %+v", first, second)
	}
	if got := answer[first.StartChar:first.EndChar]; got != "[d1:0]" {
		t.Errorf("first span text = %q", got)
	}
}

func TestMapAnswerCitationsMissingMarker(t *testing.T) {
	// Explicit chunk IDs, but the answer never mentions d2:1.
	answer := "Only [d1:0] appears."
	citations := MapAnswerCitations(answer, []string{"d1:0", "d2:1"}, nil, testChunks())
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(citations))
	}
	for _, c := range citations {
		if c.ChunkID == "d2:1" && c.AnswerSpan.Valid() {
			t.Errorf("missing marker should yield empty span, got %+v", c.AnswerSpan)
		}
	}
}

func TestMapAnswerCitationsTraceWinsOverIndex(t *testing.T) {
	trace := []models.TraceRef{{ChunkID: "d1:0", DocID: "d1", PageNumber: 9}}
	citations := MapAnswerCitations("See [d1:0].", nil, trace, testChunks())
	if len(citations) != 1 {
		t.Fatalf("got %d citations, want 1", len(citations))
	}
	if citations[0].PageNumber != 9 {
		t.Errorf("page = %d, trace provenance should win", citations[0].PageNumber)
	}
}

func TestMapAnswerCitationsUnresolvedDropped(t *testing.T) {
	citations := MapAnswerCitations("See [ghost:7].", nil, nil, testChunks())
	if len(citations) != 0 {
		t.Errorf("unresolvable mention should be dropped, got %v", citations)
	}
}

func TestMapAnswerCitationsIdempotent(t *testing.T) {
	answer := "Both [d1:0] and [d2:1], then [d1:0]."
	first := MapAnswerCitations(answer, nil, nil, testChunks())
	second := MapAnswerCitations(answer, nil, nil, testChunks())
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated mapping produced different citations")
	}
}

func TestPreviewTargetPriority(t *testing.T) {
	span := &models.Span{StartChar: 0, EndChar: 5}
	tests := []struct {
		name  string
		chunk models.Chunk
		want  models.PreviewTargetKind
	}{
		{
			name:  "explicit span wins over bbox",
			chunk: models.Chunk{Span: span, BBox: []float64{0, 0, 1, 1}},
			want:  models.TargetSpan,
		},
		{
			name: "exact highlight span",
			chunk: models.Chunk{
				Highlight: &models.Highlight{Status: "exact", Span: span},
				BBox:      []float64{0, 0, 1, 1},
			},
			want: models.TargetSpan,
		},
		{
			name:  "inexact highlight falls through to bbox",
			chunk: models.Chunk{Highlight: &models.Highlight{Status: "fuzzy", Span: span}, BBox: []float64{0, 0, 1, 1}},
			want:  models.TargetBBox,
		},
		{
			name:  "token positions",
			chunk: models.Chunk{TokenPositions: []int{3, 4}},
			want:  models.TargetTokenPositions,
		},
		{
			name:  "anchor",
			chunk: models.Chunk{Anchor: "sec-2"},
			want:  models.TargetAnchor,
		},
		{
			name:  "nothing",
			chunk: models.Chunk{},
			want:  models.TargetNone,
		},
		{
			name:  "malformed bbox ignored",
			chunk: models.Chunk{BBox: []float64{1, 2}},
			want:  models.TargetNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := previewTarget(&tt.chunk)
			if got.Kind != tt.want {
				t.Errorf("kind = %s, want %s", got.Kind, tt.want)
			}
		})
	}
}

func TestMapAnswerCitationsSnippet(t *testing.T) {
	chunks := []models.Chunk{
		{DocumentID: "d1", PageNumber: 1, ChunkIndex: 0, Text: "  alpha\n\n   text  "},
	}
	citations := MapAnswerCitations("See [d1:0].", nil, nil, chunks)
	if len(citations) != 1 {
		t.Fatalf("got %d citations", len(citations))
	}
	if citations[0].Extensions["snippet"] != "alpha text" {
		t.Errorf("snippet = %q", citations[0].Extensions["snippet"])
	}
	if citations[0].Extensions["deep_link_query"] == "" {
		t.Error("deep_link_query extension missing")
	}
}

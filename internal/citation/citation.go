// Package citation maps answer text back to its source chunks. Each mention
// of a chunk in the answer becomes one citation with a stable identifier, an
// answer span found by a single forward scan, and the best available preview
// target.
package citation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/preview"
	"github.com/hyperjump/erabu/pkg/utils"
)

// SnippetLength caps the source text preview attached to each citation.
const SnippetLength = 320

var markerPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ParseMarkers extracts chunk IDs from bracketed answer markers, in answer
// order. A marker may list several IDs separated by commas. Repeats are
// kept: each occurrence is a distinct mention.
func ParseMarkers(answer string) []string {
	var ids []string
	for _, m := range markerPattern.FindAllStringSubmatch(answer, -1) {
		for _, part := range strings.Split(m[1], ",") {
			id := strings.TrimSpace(part)
			if id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// CitationID derives the stable identifier for one mention of a chunk.
func CitationID(docID string, pageNumber int, chunkID string, mentionIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s|%d", docID, pageNumber, chunkID, mentionIndex)))
	return hex.EncodeToString(sum[:])[:16]
}

// sourceInfo is the resolved provenance and location signals for a chunk ID.
type sourceInfo struct {
	docID      string
	pageNumber int
	chunk      *models.Chunk
}

// MapAnswerCitations builds one citation per chunk mention in the answer.
//
// chunkIDs, when non-nil, is the authoritative mention list; when nil the
// mentions are parsed from bracket markers in the answer text. Provenance is
// resolved from the retrieval trace first and the index second; mentions
// that resolve to neither a document nor themselves are dropped. Answer
// spans come from a single forward scan: each found marker advances the
// cursor, a missing marker yields the empty span without moving it.
func MapAnswerCitations(answer string, chunkIDs []string, trace []models.TraceRef, indexChunks []models.Chunk) []models.Citation {
	if chunkIDs == nil {
		chunkIDs = ParseMarkers(answer)
	}

	sources := resolveSources(trace, indexChunks)

	searchFrom := 0
	citations := make([]models.Citation, 0, len(chunkIDs))
	for mention, id := range chunkIDs {
		span := models.Span{}
		marker := "[" + id + "]"
		if idx := strings.Index(answer[searchFrom:], marker); idx >= 0 {
			start := searchFrom + idx
			span = models.Span{StartChar: start, EndChar: start + len(marker)}
			searchFrom = span.EndChar
		}

		src, ok := sources[id]
		if !ok || src.docID == "" || id == "" {
			continue
		}

		c := models.Citation{
			CitationID:    CitationID(src.docID, src.pageNumber, id, mention),
			DocID:         src.docID,
			PageNumber:    src.pageNumber,
			ChunkID:       id,
			MentionIndex:  mention,
			AnswerSpan:    span,
			PreviewTarget: previewTarget(src.chunk),
		}
		c.Extensions = map[string]string{
			"deep_link_query": preview.DeepLinkQuery(c.DocID, c.PageNumber, c.CitationID),
		}
		if src.chunk != nil && src.chunk.Text != "" {
			c.Extensions["snippet"] = utils.Truncate(utils.CollapseWhitespace(src.chunk.Text), SnippetLength)
		}
		citations = append(citations, c)
	}

	sort.SliceStable(citations, func(i, j int) bool {
		a, b := &citations[i], &citations[j]
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		if a.DocID != b.DocID {
			return a.DocID < b.DocID
		}
		if a.ChunkID != b.ChunkID {
			return a.ChunkID < b.ChunkID
		}
		// Repeated mentions of the same chunk share the first three keys;
		// their IDs differ by mention index, keeping the order total.
		return a.CitationID < b.CitationID
	})
	return citations
}

// resolveSources builds the chunk ID lookup. Trace entries win over index
// metadata; within the index, chunks are visited in (document, page, chunk
// index, chunk ID) order and the first occurrence of an ID sticks.
func resolveSources(trace []models.TraceRef, indexChunks []models.Chunk) map[string]sourceInfo {
	sources := make(map[string]sourceInfo)

	ordered := make([]*models.Chunk, len(indexChunks))
	for i := range indexChunks {
		ordered[i] = &indexChunks[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		if a.ChunkIndex != b.ChunkIndex {
			return a.ChunkIndex < b.ChunkIndex
		}
		return a.ChunkID() < b.ChunkID()
	})
	for _, c := range ordered {
		id := c.ChunkID()
		if _, ok := sources[id]; ok {
			continue
		}
		sources[id] = sourceInfo{docID: c.DocumentID, pageNumber: c.PageNumber, chunk: c}
	}

	for _, ref := range trace {
		if ref.ChunkID == "" || ref.DocID == "" {
			continue
		}
		src := sources[ref.ChunkID]
		src.docID = ref.DocID
		src.pageNumber = ref.PageNumber
		sources[ref.ChunkID] = src
	}
	return sources
}

// previewTarget picks the single best location signal for a chunk, in
// priority order: explicit span, exact highlight span, bbox, token
// positions, anchor, none.
func previewTarget(c *models.Chunk) models.PreviewTarget {
	if c == nil {
		return models.PreviewTarget{Kind: models.TargetNone}
	}
	if c.Span != nil && c.Span.Valid() {
		s := *c.Span
		return models.PreviewTarget{Kind: models.TargetSpan, Span: &s}
	}
	if c.Highlight != nil && c.Highlight.Status == "exact" &&
		c.Highlight.Span != nil && c.Highlight.Span.Valid() {
		s := *c.Highlight.Span
		return models.PreviewTarget{Kind: models.TargetSpan, Span: &s}
	}
	if len(c.BBox) == 4 {
		bbox := make([]float64, 4)
		copy(bbox, c.BBox)
		return models.PreviewTarget{Kind: models.TargetBBox, BBox: bbox}
	}
	if len(c.TokenPositions) > 0 {
		toks := make([]int, len(c.TokenPositions))
		copy(toks, c.TokenPositions)
		return models.PreviewTarget{Kind: models.TargetTokenPositions, TokenPositions: toks}
	}
	if c.Anchor != "" {
		return models.PreviewTarget{Kind: models.TargetAnchor, Anchor: c.Anchor}
	}
	return models.PreviewTarget{Kind: models.TargetNone}
}

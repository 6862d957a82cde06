// Package preview builds page preview routes for citations: the URL a
// viewer opens, the deep-link query that restores context, the highlight
// mode the renderer should use, and a stable highlight color.
package preview

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/hyperjump/erabu/internal/models"
)

// DefaultPaletteSize is the number of highlight colors available when the
// caller does not configure a palette.
const DefaultPaletteSize = 8

// PreviewURL builds the page preview path with its query string. Path
// segments are escaped so document IDs with slashes or spaces survive.
func PreviewURL(docID string, pageNumber int, chunkID, citationID string) string {
	q := url.Values{}
	q.Set("chunk_id", chunkID)
	q.Set("citation_id", citationID)
	return fmt.Sprintf("/api/documents/%s/pages/%d?%s",
		url.PathEscape(docID), pageNumber, q.Encode())
}

// DeepLinkQuery builds the fragment query a client appends to restore the
// cited context. Key order is fixed so the string is byte-stable.
func DeepLinkQuery(docID string, pageNumber int, citationID string) string {
	return fmt.Sprintf("doc=%s&page=%d&citation=%s",
		url.QueryEscape(docID), pageNumber, url.QueryEscape(citationID))
}

// ColorIndex assigns a palette slot from the citation ID: the first eight
// hex characters of sha256(citation_id), taken modulo the palette size. The
// same citation always gets the same color.
func ColorIndex(citationID string, paletteSize int) int {
	if paletteSize <= 0 {
		paletteSize = DefaultPaletteSize
	}
	sum := sha256.Sum256([]byte(citationID))
	prefix := hex.EncodeToString(sum[:])[:8]
	n, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return 0
	}
	return int(n % uint64(paletteSize))
}

// highlightMode picks the render mode from the chunk's raw location signals
// in route priority order: bbox, span, token positions, anchor. When the
// chunk is unknown it falls back to the citation's own preview target.
func highlightMode(citation *models.Citation, chunk *models.Chunk) models.HighlightMode {
	if chunk != nil {
		if len(chunk.BBox) == 4 {
			return models.HighlightBBox
		}
		if chunk.Span != nil && chunk.Span.Valid() {
			return models.HighlightSpan
		}
		if chunk.Highlight != nil && chunk.Highlight.Status == "exact" &&
			chunk.Highlight.Span != nil && chunk.Highlight.Span.Valid() {
			return models.HighlightSpan
		}
		if len(chunk.TokenPositions) > 0 {
			return models.HighlightTokenPositions
		}
		if chunk.Anchor != "" {
			return models.HighlightAnchor
		}
		return models.HighlightUnavailable
	}
	switch citation.PreviewTarget.Kind {
	case models.TargetBBox:
		return models.HighlightBBox
	case models.TargetSpan:
		return models.HighlightSpan
	case models.TargetTokenPositions:
		return models.HighlightTokenPositions
	case models.TargetAnchor:
		return models.HighlightAnchor
	default:
		return models.HighlightUnavailable
	}
}

// BuildRoutes produces one preview route per citation. Citations missing an
// ID, document, or chunk are skipped. chunksByID supplies the raw location
// signals for highlight mode selection; citations whose chunk is absent fall
// back to their preview target. Output is sorted by (page, document, chunk,
// citation ID).
func BuildRoutes(citations []models.Citation, chunksByID map[string]models.Chunk, paletteSize int) []models.PreviewRoute {
	routes := make([]models.PreviewRoute, 0, len(citations))
	for i := range citations {
		c := &citations[i]
		if c.CitationID == "" || c.DocID == "" || c.ChunkID == "" {
			continue
		}
		var chunk *models.Chunk
		if ch, ok := chunksByID[c.ChunkID]; ok {
			chunk = &ch
		}
		route := models.PreviewRoute{
			CitationID:    c.CitationID,
			DocumentID:    c.DocID,
			PageNumber:    c.PageNumber,
			ChunkID:       c.ChunkID,
			PreviewURL:    PreviewURL(c.DocID, c.PageNumber, c.ChunkID, c.CitationID),
			DeepLinkQuery: DeepLinkQuery(c.DocID, c.PageNumber, c.CitationID),
			HighlightMode: highlightMode(c, chunk),
			ColorIndex:    ColorIndex(c.CitationID, paletteSize),
		}
		if snippet, ok := c.Extensions["snippet"]; ok {
			route.Snippet = snippet
		}
		routes = append(routes, route)
	}
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := &routes[i], &routes[j]
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		if a.ChunkID != b.ChunkID {
			return a.ChunkID < b.ChunkID
		}
		return a.CitationID < b.CitationID
	})
	return routes
}

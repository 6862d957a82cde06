package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/hyperjump/erabu/internal/embedding"
	"github.com/hyperjump/erabu/internal/models"
	"github.com/hyperjump/erabu/internal/vectorstore"
	"github.com/hyperjump/erabu/pkg/utils"
)

// Scorer bundles the embedding model, embedder, and vector store needed for
// semantic scoring. It holds no per-query state. Cache, when set, sits in
// front of the store: only vectors with an ok status are cached.
type Scorer struct {
	Model    embedding.ModelSpec
	Embedder embedding.Embedder
	Vectors  vectorstore.Store
	Cache    *embedding.Cache
	Enabled  bool
}

// loadVectors returns records for the given hashes, serving hits from the
// cache and fetching the rest from the store.
func (s *Scorer) loadVectors(ctx context.Context, hashes []string) (map[string]vectorstore.Record, error) {
	modelID := s.Model.ModelID()
	if s.Cache == nil {
		return s.Vectors.Get(ctx, modelID, hashes)
	}

	records := make(map[string]vectorstore.Record, len(hashes))
	missing := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if vec, ok := s.Cache.Get(modelID, h); ok {
			records[h] = vectorstore.Record{
				ContentHash: h,
				ModelID:     modelID,
				Dims:        len(vec),
				Vector:      vec,
				Status:      vectorstore.StatusOK,
			}
			continue
		}
		missing = append(missing, h)
	}
	if len(missing) > 0 {
		fetched, err := s.Vectors.Get(ctx, modelID, missing)
		if err != nil {
			return nil, err
		}
		for h, rec := range fetched {
			records[h] = rec
			if rec.Status == vectorstore.StatusOK {
				s.Cache.Put(modelID, h, rec.Vector)
			}
		}
	}
	return records, nil
}

// SemanticScores embeds the query and scores each chunk by cosine similarity
// against its stored vector. Returns the score map keyed by chunk ID and the
// semantic candidate pool: the chunk IDs of the top CandidateLimit scores,
// ordered by descending score then ascending chunk ID.
//
// Semantic scoring fails soft in two cases: scoring disabled, and a query
// whose embedding is the zero vector. Both return empty results with no
// error, leaving lexical ranking in charge. A stored vector whose length
// does not match the model is fatal.
func (s *Scorer) SemanticScores(ctx context.Context, query string, chunks []models.Chunk) (map[string]float64, []string, error) {
	if !s.Enabled || len(chunks) == 0 {
		return nil, nil, nil
	}

	queryVec, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if embedding.IsZero(queryVec) {
		return map[string]float64{}, nil, nil
	}

	hashes := make([]string, 0, len(chunks))
	hashToChunk := make(map[string]*models.Chunk, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		h := embedding.ContentHash(c.DocumentID, c.PageNumber, c.ChunkIndex, c.Text)
		hashes = append(hashes, h)
		hashToChunk[h] = c
	}

	records, err := s.loadVectors(ctx, hashes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	scores := make(map[string]float64, len(records))
	for h, rec := range records {
		c, ok := hashToChunk[h]
		if !ok || rec.Status == vectorstore.StatusUnavailable {
			continue
		}
		if len(rec.Vector) != len(queryVec) {
			return nil, nil, fmt.Errorf("%w: chunk %s has %d dims, model %s expects %d",
				models.ErrEmbeddingDimensionMismatch, c.ChunkID(), len(rec.Vector), s.Model.ModelID(), len(queryVec))
		}
		sim := cosineSimilarity(queryVec, rec.Vector)
		sim = utils.RoundAt(sim, s.Model.Precision)
		if sim < 0 {
			sim = 0
		} else if sim > 1 {
			sim = 1
		}
		scores[c.ChunkID()] = utils.Round4(sim)
	}

	pool := make([]string, 0, len(scores))
	for id := range scores {
		pool = append(pool, id)
	}
	sort.Slice(pool, func(i, j int) bool {
		if scores[pool[i]] != scores[pool[j]] {
			return scores[pool[i]] > scores[pool[j]]
		}
		return pool[i] < pool[j]
	})
	if s.Model.CandidateLimit > 0 && len(pool) > s.Model.CandidateLimit {
		pool = pool[:s.Model.CandidateLimit]
	}
	return scores, pool, nil
}

// IndexChunks embeds and stores vectors for chunks that are not yet in the
// store. Embedding failures for individual chunks are recorded as
// unavailable rather than aborting the batch.
func (s *Scorer) IndexChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	modelID := s.Model.ModelID()
	hashes := make([]string, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		hashes = append(hashes, embedding.ContentHash(c.DocumentID, c.PageNumber, c.ChunkIndex, c.Text))
	}
	existing, err := s.Vectors.Get(ctx, modelID, hashes)
	if err != nil {
		return fmt.Errorf("failed to check existing vectors: %w", err)
	}

	records := make([]vectorstore.Record, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		h := hashes[i]
		if _, ok := existing[h]; ok {
			continue
		}
		rec := vectorstore.Record{
			ChunkID:     c.ChunkID(),
			ContentHash: h,
			ModelID:     modelID,
			Dims:        s.Model.Dims,
			Status:      vectorstore.StatusOK,
		}
		vec, err := s.Embedder.Embed(ctx, c.Text)
		if err != nil {
			rec.Status = vectorstore.StatusUnavailable
		} else {
			rec.Vector = vec
			rec.Dims = len(vec)
		}
		records = append(records, rec)
	}
	if err := s.Vectors.Put(ctx, records); err != nil {
		return fmt.Errorf("failed to store vectors: %w", err)
	}
	if s.Cache != nil {
		for _, rec := range records {
			if rec.Status == vectorstore.StatusOK {
				s.Cache.Put(modelID, rec.ContentHash, rec.Vector)
			}
		}
	}
	return nil
}

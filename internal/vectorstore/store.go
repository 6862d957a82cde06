// Package vectorstore persists embedding vectors keyed by model and content
// hash. Two implementations are provided: an in-memory store for tests and
// small corpora, and a SQLite-backed store for durable caches.
package vectorstore

import "context"

// Record status values. A record marked unavailable is skipped during
// semantic scoring rather than treated as an error.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Record is one stored embedding vector with its identity and provenance.
type Record struct {
	ChunkID     string    `json:"chunk_id"`
	ContentHash string    `json:"content_hash"`
	ModelID     string    `json:"model_id"`
	Dims        int       `json:"dims"`
	Vector      []float64 `json:"vector"`
	Status      string    `json:"status"`
}

// Store is the persistence contract for embedding vectors.
type Store interface {
	// Get returns the records for the given content hashes under one model,
	// keyed by content hash. Missing hashes are simply absent from the map.
	Get(ctx context.Context, modelID string, contentHashes []string) (map[string]Record, error)

	// Put stores records. Existing records for the same (content_hash,
	// model_id) are left untouched so the first write wins.
	Put(ctx context.Context, records []Record) error
}

package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a durable Store backed by SQLite. Vectors are stored as
// JSON arrays; the (content_hash, model_id) primary key enforces the
// first-write-wins rule via INSERT OR IGNORE.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// prepares the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS embedding_vectors (
		content_hash TEXT NOT NULL,
		model_id     TEXT NOT NULL,
		chunk_id     TEXT NOT NULL,
		dims         INTEGER NOT NULL,
		vector       TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'ok',
		PRIMARY KEY (content_hash, model_id)
	);
	CREATE INDEX IF NOT EXISTS idx_vectors_chunk ON embedding_vectors(chunk_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, modelID string, contentHashes []string) (map[string]Record, error) {
	out := make(map[string]Record, len(contentHashes))
	if len(contentHashes) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat("?,", len(contentHashes))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(contentHashes)+1)
	args = append(args, modelID)
	for _, h := range contentHashes {
		args = append(args, h)
	}
	query := fmt.Sprintf(`
		SELECT content_hash, chunk_id, dims, vector, status
		FROM embedding_vectors
		WHERE model_id = ? AND content_hash IN (%s)`, placeholders)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		var vectorJSON string
		if err := rows.Scan(&rec.ContentHash, &rec.ChunkID, &rec.Dims, &vectorJSON, &rec.Status); err != nil {
			return nil, fmt.Errorf("failed to scan vector row: %w", err)
		}
		rec.ModelID = modelID
		if err := json.Unmarshal([]byte(vectorJSON), &rec.Vector); err != nil {
			return nil, fmt.Errorf("failed to decode vector for %s: %w", rec.ChunkID, err)
		}
		out[rec.ContentHash] = rec
	}
	return out, rows.Err()
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO embedding_vectors
			(content_hash, model_id, chunk_id, dims, vector, status)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		vectorJSON, err := json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("failed to encode vector for %s: %w", rec.ChunkID, err)
		}
		status := rec.Status
		if status == "" {
			status = StatusOK
		}
		if _, err := stmt.ExecContext(ctx, rec.ContentHash, rec.ModelID, rec.ChunkID, rec.Dims, string(vectorJSON), status); err != nil {
			return fmt.Errorf("failed to insert vector for %s: %w", rec.ChunkID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

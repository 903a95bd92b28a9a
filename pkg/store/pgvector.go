package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mtessier/ircc-rag/internal/models"
)

// StoreError covers constraint violations and connectivity failures.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

type StoreConfig struct {
	ConnString string
	VectorDim  int
}

// Store persists sources and chunks in Postgres with pgvector similarity
// search. Safe for concurrent use; retrieval borrows connections from the
// pool per request.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config StoreConfig) (*Store, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // text-embedding-3-small
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, &StoreError{Op: "connect", Err: err}
	}

	return &Store{
		config: config,
		pool:   pool,
	}, nil
}

// Init creates the extension, tables and indexes if they do not exist.
func (s *Store) Init(ctx context.Context) error {
	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS vector",
		`CREATE TABLE IF NOT EXISTS sources (
			id BIGSERIAL PRIMARY KEY,
			url TEXT UNIQUE NOT NULL,
			title TEXT,
			doc_type TEXT,
			program TEXT,
			content_hash TEXT NOT NULL,
			retrieved_at TIMESTAMPTZ DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id BIGSERIAL PRIMARY KEY,
			source_id BIGINT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			section TEXT,
			content TEXT NOT NULL,
			chunk_hash TEXT NOT NULL,
			embedding vector(%d),
			UNIQUE (source_id, chunk_hash)
		)`, s.config.VectorDim),
		`CREATE INDEX IF NOT EXISTS chunks_embedding_idx
			ON chunks
			USING ivfflat (embedding vector_cosine_ops)
			WITH (lists = 100)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &StoreError{Op: "init", Err: err}
		}
	}
	return nil
}

// FindSourceByURL returns the stored id and content hash for a URL, with
// ok=false when no row exists.
func (s *Store) FindSourceByURL(ctx context.Context, url string) (int64, string, bool, error) {
	var id int64
	var hash string
	err := s.pool.QueryRow(ctx,
		"SELECT id, content_hash FROM sources WHERE url=$1", url,
	).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, &StoreError{Op: "find source", Err: err}
	}
	return id, hash, true, nil
}

// UpsertSource implements change detection. New URL: insert, changed=true.
// Matching fingerprint: changed=false, chunks untouched. Differing
// fingerprint: update the source row and delete all of its chunks in one
// transaction, changed=true so the caller regenerates the full chunk set.
func (s *Store) UpsertSource(ctx context.Context, doc *models.ExtractedDocument, docType, program string) (int64, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, false, &StoreError{Op: "upsert source", Err: err}
	}
	defer tx.Rollback(ctx)

	var id int64
	var oldHash string
	err = tx.QueryRow(ctx,
		"SELECT id, content_hash FROM sources WHERE url=$1", doc.URL,
	).Scan(&id, &oldHash)

	switch {
	case err == nil:
		if oldHash == doc.ContentHash {
			return id, false, nil
		}
		_, err = tx.Exec(ctx,
			`UPDATE sources
			 SET title=$1, doc_type=$2, program=$3, content_hash=$4, retrieved_at=now()
			 WHERE id=$5`,
			nullable(doc.Title), nullable(docType), nullable(program), doc.ContentHash, id)
		if err != nil {
			return 0, false, &StoreError{Op: "update source", Err: err}
		}
		if _, err = tx.Exec(ctx, "DELETE FROM chunks WHERE source_id=$1", id); err != nil {
			return 0, false, &StoreError{Op: "delete chunks", Err: err}
		}
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx,
			`INSERT INTO sources (url, title, doc_type, program, content_hash)
			 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			doc.URL, nullable(doc.Title), nullable(docType), nullable(program), doc.ContentHash,
		).Scan(&id)
		if err != nil {
			return 0, false, &StoreError{Op: "insert source", Err: err}
		}
	default:
		return 0, false, &StoreError{Op: "upsert source", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, &StoreError{Op: "upsert source", Err: err}
	}
	return id, true, nil
}

// InsertChunks writes rows with their embeddings, silently skipping rows
// whose (source_id, chunk_hash) already exists so retried batches cannot
// produce duplicates. Returns the number of rows actually stored.
func (s *Store) InsertChunks(ctx context.Context, sourceID int64, rows []models.ChunkRow) (int64, error) {
	var inserted int64
	for _, row := range rows {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO chunks (source_id, chunk_index, section, content, chunk_hash, embedding)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 ON CONFLICT (source_id, chunk_hash) DO NOTHING`,
			sourceID, row.ChunkIndex, row.Section, row.Content, row.ChunkHash,
			pgvector.NewVector(row.Embedding))
		if err != nil {
			return inserted, &StoreError{Op: "insert chunks", Err: err}
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// NearestChunks returns up to limit rows ordered by ascending cosine
// distance, each joined to its owning source URL.
func (s *Store) NearestChunks(ctx context.Context, embedding []float32, limit int) ([]models.RetrievedRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.url, COALESCE(c.section, ''), c.content
		 FROM chunks c
		 JOIN sources s ON s.id = c.source_id
		 ORDER BY c.embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, &StoreError{Op: "nearest chunks", Err: err}
	}
	defer rows.Close()

	var results []models.RetrievedRow
	for rows.Next() {
		var r models.RetrievedRow
		if err := rows.Scan(&r.URL, &r.Section, &r.Content); err != nil {
			return nil, &StoreError{Op: "nearest chunks", Err: err}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "nearest chunks", Err: err}
	}
	return results, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// nullable maps empty strings to SQL NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

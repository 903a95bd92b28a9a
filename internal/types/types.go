package types

import (
	"context"

	"github.com/mtessier/ircc-rag/internal/models"
)

// Core interfaces. Concrete implementations live under pkg/; fakes for tests
// only need the slice of behaviour their consumer touches.

type Extractor interface {
	Extract(ctx context.Context, url string) (*models.ExtractedDocument, error)
}

type Chunker interface {
	Chunk(sections []models.Section) []models.ChunkCandidate
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// StoreWriter is the write half of the persistence contract, consumed by the
// ingestion pipeline.
type StoreWriter interface {
	UpsertSource(ctx context.Context, doc *models.ExtractedDocument, docType, program string) (sourceID int64, changed bool, err error)
	InsertChunks(ctx context.Context, sourceID int64, rows []models.ChunkRow) (int64, error)
}

// ChunkSearcher is the read half, consumed by the retriever.
type ChunkSearcher interface {
	NearestChunks(ctx context.Context, embedding []float32, limit int) ([]models.RetrievedRow, error)
}

package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/mtessier/ircc-rag/internal/models"
	"github.com/mtessier/ircc-rag/internal/types"
)

type RetrieverConfig struct {
	FetchK       int // candidate pool size, larger than any top-K
	TopK         int // default result count
	QueryTimeout time.Duration
	ExcludeURLs  []string
	Policies     []TopicPolicy
}

// Retriever turns a question into a distance-ordered, filtered set of chunks.
// Stateless per request; concurrent calls need no coordination.
type Retriever struct {
	config   RetrieverConfig
	embedder types.Embedder
	store    types.ChunkSearcher
}

func NewWithConfig(config RetrieverConfig, embedder types.Embedder, store types.ChunkSearcher) *Retriever {
	if config.FetchK == 0 {
		config.FetchK = 30
	}
	if config.TopK == 0 {
		config.TopK = 6
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = 15 * time.Second
	}
	if config.ExcludeURLs == nil {
		config.ExcludeURLs = DefaultExcludedURLs()
	}
	if config.Policies == nil {
		config.Policies = DefaultPolicies()
	}

	return &Retriever{
		config:   config,
		embedder: embedder,
		store:    store,
	}
}

// Retrieve returns at most topK rows ordered by increasing vector distance.
// topK <= 0 uses the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedRow, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.QueryTimeout)
	defer cancel()

	vectors, err := r.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("retrieve: empty query embedding")
	}

	rows, err := r.store.NearestChunks(ctx, vectors[0], r.config.FetchK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	rows = r.dropExcluded(rows)

	for _, policy := range r.config.Policies {
		if policy.Matches(query) {
			rows = policy.Apply(rows)
			break
		}
	}

	if len(rows) > topK {
		rows = rows[:topK]
	}
	return rows, nil
}

func (r *Retriever) dropExcluded(rows []models.RetrievedRow) []models.RetrievedRow {
	var kept []models.RetrievedRow
	for _, row := range rows {
		if !r.excluded(row.URL) {
			kept = append(kept, row)
		}
	}
	return kept
}

func (r *Retriever) excluded(url string) bool {
	for _, excluded := range r.config.ExcludeURLs {
		if url == excluded {
			return true
		}
	}
	return false
}

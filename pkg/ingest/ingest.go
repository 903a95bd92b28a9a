package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mtessier/ircc-rag/internal/models"
	"github.com/mtessier/ircc-rag/internal/types"
)

type Config struct {
	DocType   string // classification stored on each source row
	Program   string
	BatchSize int // chunks embedded and inserted per commit
}

// Pipeline runs the sequential ingestion flow for each URL: extract, chunk,
// change-detect, embed, insert. One source is fully processed before the next
// begins.
type Pipeline struct {
	config    Config
	extractor types.Extractor
	chunker   types.Chunker
	embedder  types.Embedder
	store     types.StoreWriter
	logger    *slog.Logger
}

// Result reports what happened to one URL. Err is set when the URL failed;
// previously committed batches for it stay durable.
type Result struct {
	URL      string
	Changed  bool
	Chunks   int
	Inserted int64
	Err      error
}

func New(config Config, extractor types.Extractor, chunker types.Chunker, embedder types.Embedder, store types.StoreWriter, logger *slog.Logger) *Pipeline {
	if config.DocType == "" {
		config.DocType = "IRCC"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 32
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		config:    config,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// Run ingests every URL in order, skipping over per-URL failures so one bad
// source never aborts the run or touches other sources' data. onResult, if
// non-nil, is called after each URL.
func (p *Pipeline) Run(ctx context.Context, urls []string, onResult func(Result)) []Result {
	results := make([]Result, 0, len(urls))
	for _, url := range urls {
		result := p.IngestURL(ctx, url)
		if result.Err != nil {
			p.logger.Error("ingestion failed", "url", url, "error", result.Err)
		}
		if onResult != nil {
			onResult(result)
		}
		results = append(results, result)
	}
	return results
}

// IngestURL processes a single document end to end. An unchanged fingerprint
// is a no-op; a changed one replaces the full chunk set.
func (p *Pipeline) IngestURL(ctx context.Context, url string) Result {
	doc, err := p.extractor.Extract(ctx, url)
	if err != nil {
		return Result{URL: url, Err: err}
	}

	candidates := p.chunker.Chunk(doc.Sections)

	sourceID, changed, err := p.store.UpsertSource(ctx, doc, p.config.DocType, p.config.Program)
	if err != nil {
		return Result{URL: url, Err: err}
	}
	if !changed {
		p.logger.Info("no change detected, skipping", "url", url)
		return Result{URL: url}
	}

	inserted, err := p.insertBatches(ctx, sourceID, candidates)
	return Result{
		URL:      url,
		Changed:  true,
		Chunks:   len(candidates),
		Inserted: inserted,
		Err:      err,
	}
}

// insertBatches embeds and writes candidates in fixed-size batches, each
// committed before the next starts, so a mid-ingestion failure leaves prior
// batches durable and the re-run converges.
func (p *Pipeline) insertBatches(ctx context.Context, sourceID int64, candidates []models.ChunkCandidate) (int64, error) {
	var inserted int64
	for start := 0; start < len(candidates); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := p.embedder.CreateEmbedding(ctx, texts)
		if err != nil {
			return inserted, err
		}
		if len(vectors) != len(batch) {
			return inserted, fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(batch))
		}

		rows := make([]models.ChunkRow, len(batch))
		for i, c := range batch {
			rows[i] = models.ChunkRow{ChunkCandidate: c, Embedding: vectors[i]}
		}

		n, err := p.store.InsertChunks(ctx, sourceID, rows)
		inserted += n
		if err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

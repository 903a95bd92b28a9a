package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/openai"
)

// EmbeddingServiceError wraps provider failures (auth, rate limit, malformed
// input). The embedder does not retry; that is the caller's policy.
type EmbeddingServiceError struct {
	Err error
}

func (e *EmbeddingServiceError) Error() string {
	return fmt.Sprintf("embedding service: %v", e.Err)
}

func (e *EmbeddingServiceError) Unwrap() error { return e.Err }

type EmbedderConfig struct {
	Model   string
	BaseURL string
	APIKey  string // falls back to OPENAI_API_KEY
}

// Embedder converts texts into fixed-dimension vectors, one per input,
// order-preserving.
type Embedder struct {
	config EmbedderConfig
	llm    *openai.LLM
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}

	opts := []openai.Option{openai.WithEmbeddingModel(config.Model)}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{
		config: config,
		llm:    client,
	}, nil
}

func NewEmbedder() (*Embedder, error) {
	return NewEmbedderWithConfig(EmbedderConfig{})
}

func (e *Embedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, &EmbeddingServiceError{Err: err}
	}
	if len(vectors) != len(texts) {
		return nil, &EmbeddingServiceError{
			Err: fmt.Errorf("got %d embeddings for %d inputs", len(vectors), len(texts)),
		}
	}
	return vectors, nil
}

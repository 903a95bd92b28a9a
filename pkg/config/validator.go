package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "database URL is required (set DATABASE_URL or database.url)",
		})
	} else if _, err := url.Parse(c.Database.URL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "invalid database URL",
		})
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Database.TopK < 1 || c.Database.FetchK < c.Database.TopK {
		errors = append(errors, ValidationError{
			Field:   "database.fetch_k",
			Message: "fetch_k must be at least top_k, and top_k positive",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Extractor.TimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "extractor.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.Extractor.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "extractor.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Chunker.MaxTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.max_tokens",
			Message: "max_tokens must be positive",
		})
	}

	if c.Chunker.OverlapTokens < 0 || c.Chunker.OverlapTokens >= c.Chunker.MaxTokens {
		errors = append(errors, ValidationError{
			Field:   "chunker.overlap_tokens",
			Message: "overlap_tokens must be non-negative and less than max_tokens",
		})
	}

	if c.Chunker.MinChars < 0 {
		errors = append(errors, ValidationError{
			Field:   "chunker.min_chars",
			Message: "min_chars must be non-negative",
		})
	}

	return errors
}

package models

import "time"

// Section is one heading-scoped block of extracted text. For PDFs the
// heading is the 1-based page number ("Page 3").
type Section struct {
	Heading string
	Text    string
}

// ExtractedDocument is the transient output of extraction, consumed by the
// chunker and by content-change detection. It is never persisted as-is.
type ExtractedDocument struct {
	URL         string
	Title       string
	Sections    []Section
	ContentHash string
}

// ChunkCandidate is one token-bounded window of a section's text. ChunkIndex
// increases across the whole document, not per section.
type ChunkCandidate struct {
	Section    string
	Content    string
	ChunkIndex int
	ChunkHash  string
}

// ChunkRow is a candidate paired with its embedding, the unit of insertion.
type ChunkRow struct {
	ChunkCandidate
	Embedding []float32
}

// Source mirrors one row of the sources table.
type Source struct {
	ID          int64
	URL         string
	Title       string
	DocType     string
	Program     string
	ContentHash string
	RetrievedAt time.Time
}

// RetrievedRow is the unit a similarity query returns and the retriever
// filters: the chunk text joined to its owning source URL and section.
type RetrievedRow struct {
	URL     string
	Section string
	Content string
}

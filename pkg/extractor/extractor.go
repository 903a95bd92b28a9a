package extractor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mtessier/ircc-rag/internal/models"
)

const pdfSignature = "%PDF"

// FetchError covers network failures, timeouts and non-success HTTP status.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the response bytes could not be interpreted as PDF or HTML.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type ExtractorConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	UserAgent string
}

// Extractor fetches a document by URL and normalizes it into an ordered list
// of (heading, text) sections with a content fingerprint.
type Extractor struct {
	config  ExtractorConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ExtractorConfig) *Extractor {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.UserAgent == "" {
		config.UserAgent = "ircc-rag-bot/0.1"
	}

	return &Extractor{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func New() *Extractor {
	return NewWithConfig(ExtractorConfig{})
}

func (e *Extractor) Extract(ctx context.Context, rawURL string) (*models.ExtractedDocument, error) {
	data, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Trust the file signature over the URL: mislabeled links happen.
	if isPDFURL(rawURL) || bytes.HasPrefix(data, []byte(pdfSignature)) {
		return e.extractPDF(rawURL, data)
	}
	return e.extractHTML(rawURL, data)
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", e.config.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	return data, nil
}

func isPDFURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// collapseWhitespace folds runs of whitespace into single spaces and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fingerprint is the content hash driving incremental re-ingestion: stable
// for unchanged text, different if any section's text changes.
func fingerprint(fullText string) string {
	sum := sha256.Sum256([]byte(fullText))
	return hex.EncodeToString(sum[:])
}

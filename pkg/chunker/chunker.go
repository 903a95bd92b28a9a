package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/mtessier/ircc-rag/internal/models"
)

type ChunkerConfig struct {
	MaxTokens     int // window size
	OverlapTokens int // tokens shared by consecutive windows
	MinChars      int // windows shorter than this are dropped
	Tokenizer     Tokenizer
}

// Chunker splits section text into overlapping token-bounded windows. Pure
// and deterministic: identical input yields byte-identical chunks and hashes.
type Chunker struct {
	config ChunkerConfig
}

func NewWithConfig(config ChunkerConfig) (*Chunker, error) {
	if config.MaxTokens == 0 {
		config.MaxTokens = 800
	}
	if config.OverlapTokens == 0 {
		config.OverlapTokens = 120
	}
	if config.MinChars == 0 {
		config.MinChars = 140
	}
	if config.Tokenizer == nil {
		tokenizer, err := NewTiktokenTokenizer()
		if err != nil {
			return nil, err
		}
		config.Tokenizer = tokenizer
	}

	return &Chunker{config: config}, nil
}

func (c *Chunker) Chunk(sections []models.Section) []models.ChunkCandidate {
	var chunks []models.ChunkCandidate
	index := 0
	for _, section := range sections {
		for _, window := range c.splitByTokens(section.Text) {
			content := collapseWhitespace(window)
			if utf8.RuneCountInString(content) < c.config.MinChars {
				continue
			}
			chunks = append(chunks, models.ChunkCandidate{
				Section:    section.Heading,
				Content:    content,
				ChunkIndex: index,
				ChunkHash:  ChunkHash(section.Heading, content),
			})
			index++
		}
	}
	return chunks
}

func (c *Chunker) splitByTokens(text string) []string {
	tokens := c.config.Tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var windows []string
	start := 0
	for start < len(tokens) {
		end := start + c.config.MaxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		windows = append(windows, c.config.Tokenizer.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
		start = end - c.config.OverlapTokens
		if start < 0 {
			start = 0
		}
	}
	return windows
}

// ChunkHash fingerprints a chunk over heading and content together, so the
// same text under a different heading is a different chunk.
func ChunkHash(heading, content string) string {
	sum := sha256.Sum256([]byte(heading + "::" + content))
	return hex.EncodeToString(sum[:])
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

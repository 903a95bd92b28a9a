package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer turns text into token IDs and back. Chunk windows are measured in
// tokens so the same text always splits the same way.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

const encodingName = "cl100k_base"

type tiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenTokenizer returns the cl100k_base tokenizer used by the
// embedding model, so token counts line up with what the provider sees.
func NewTiktokenTokenizer() (Tokenizer, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &tiktokenTokenizer{encoding: encoding}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens against a model-specific budget. The chunker depends
// on this interface so tests can substitute a cheap counter.
type Counter interface {
	Count(text string) int
}

// Tokenizer counts tokens with the cl100k_base encoding used by the OpenAI
// embedding models.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding: %w", err)
	}
	return &Tokenizer{enc: enc}, nil
}

func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

var _ Counter = (*Tokenizer)(nil)

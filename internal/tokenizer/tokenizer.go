// Package tokenizer provides pluggable token-length estimation. Every
// size-aware decision downstream (page grouping, node splitting, summary
// skipping) goes through a Counter.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates the token length of a text.
type Counter interface {
	Count(text string) int
}

// Approximate estimates tokens as len/4, minimum 1 for non-empty text. Fast
// and dependency-free; good enough for grouping and splitting decisions.
type Approximate struct{}

func (Approximate) Count(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// Tiktoken counts exactly using OpenAI BPE encodings, caching one encoder
// per model. Unknown models fall back to cl100k_base.
type Tiktoken struct {
	model string

	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
}

// NewTiktoken creates an exact counter for the given model.
func NewTiktoken(model string) *Tiktoken {
	return &Tiktoken{
		model:    model,
		encoders: make(map[string]*tiktoken.Tiktoken),
	}
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	enc, err := t.encoder(t.model)
	if err != nil {
		return Approximate{}.Count(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func (t *Tiktoken) encoder(model string) (*tiktoken.Tiktoken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enc, ok := t.encoders[model]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	t.encoders[model] = enc
	return enc, nil
}

// New selects a Counter implementation by method name.
func New(method, model string) (Counter, error) {
	switch method {
	case "", "approximate":
		return Approximate{}, nil
	case "tiktoken":
		return NewTiktoken(model), nil
	default:
		return nil, fmt.Errorf("unsupported tokenizer method: %s", method)
	}
}

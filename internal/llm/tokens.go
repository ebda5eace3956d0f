package llm

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens estimates the token count of text with the o200k_base encoding.
// When the codec cannot be loaded it falls back to one token per four bytes.
// The estimate is for logs and tracing only.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}

	codecOnce.Do(func() {
		enc, err := tokenizer.Get(tokenizer.O200kBase)
		if err == nil {
			codec = enc
		}
	})

	if codec != nil {
		if _, tokens, err := codec.Encode(text); err == nil {
			return len(tokens)
		}
	}
	return (len(text) + 3) / 4
}

// Package tokenizer counts tokens the way the provider bills them, using
// tiktoken-go. Encoders are expensive to construct, so they are built
// lazily and cached per model for the life of the process.
package tokenizer

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

// The embedded dictionaries keep encoder construction off the network;
// the default loader fetches BPE files from a CDN on first use.
func init() {
	tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
}

// fallbackEncoding covers models tiktoken doesn't know by name.
// cl100k_base is the encoding behind gpt-4 and gpt-3.5-turbo.
const fallbackEncoding = "cl100k_base"

type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the number of tokens in text for the given model.
// Deterministic: the same model and text always yield the same count.
func (c *Counter) Count(model, text string) (int, error) {
	enc, err := c.encoder(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

func (c *Counter) encoder(model string) (*tiktoken.Tiktoken, error) {
	c.mu.RLock()
	enc, ok := c.cache[model]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have filled the entry while we waited.
	// Idempotent either way: identical keys resolve to identical encoders.
	if enc, ok := c.cache[model]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("loading tokenizer for %s: %w", model, err)
		}
	}
	c.cache[model] = enc
	return enc, nil
}

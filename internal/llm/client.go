package llm

import "context"

type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// Request describes one streaming completion call. MaxTokens is a hard
// cap the caller derives from the model ceiling and the credit budget.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Stream yields incremental content fragments. Text returns the fragment
// for the current position; it may be empty for bookkeeping chunks.
type Stream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

type Client interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}

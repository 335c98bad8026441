package llm

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	return &openaiStream{stream: c.client.Chat.Completions.NewStreaming(ctx, params)}, nil
}

// openaiStream adapts the SDK's SSE stream to the Stream interface.
// The interface literal keeps the ssestream generics out of our API.
type openaiStream struct {
	stream interface {
		Next() bool
		Current() openai.ChatCompletionChunk
		Err() error
		Close() error
	}
	text string
}

func (s *openaiStream) Next() bool {
	if !s.stream.Next() {
		return false
	}
	chunk := s.stream.Current()
	s.text = ""
	if len(chunk.Choices) > 0 {
		s.text = chunk.Choices[0].Delta.Content
	}
	return true
}

func (s *openaiStream) Text() string { return s.text }
func (s *openaiStream) Err() error   { return s.stream.Err() }
func (s *openaiStream) Close() error { return s.stream.Close() }

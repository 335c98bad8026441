// Package pipeline turns a reconstructed conversation into a priced,
// streamed model response: assemble the message list, check the credit
// budget before any spend, stream the generation with periodic progress
// edits, service ask-back directives, and settle the final debit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/coasterfreak/opengpt/internal/db"
	"github.com/coasterfreak/opengpt/internal/llm"
	"github.com/coasterfreak/opengpt/internal/pricing"
	"github.com/coasterfreak/opengpt/internal/tokenizer"
)

const (
	// temperature is creative but bounded; responses stay on topic.
	temperature = 0.9

	// progressChunkChars is how much new text must accumulate before the
	// progress surface is edited again. Keeps us well under edit rate limits.
	progressChunkChars = 250

	// previewLimit caps the partial-response preview in progress edits.
	previewLimit = 1600

	// maxAskBackRounds bounds the directive loop so a model that always
	// asks back cannot accrue unbounded cost.
	maxAskBackRounds = 5
)

// Store is the slice of the user store settlement needs.
type Store interface {
	DebitCredits(userID string, amount int64) (int64, error)
}

// InfoSource resolves ask-back directives against the platform.
type InfoSource interface {
	UserInfo(ctx context.Context, userID string) (string, error)
	GuildInfo(ctx context.Context) (string, error)
}

// Notifier receives progress updates for the single in-flight response.
// Implementations must not fail the pipeline; edit errors are theirs to
// swallow.
type Notifier interface {
	Notify(text string)
}

// NopNotifier discards progress updates.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// NopInfoSource answers every ask-back with an error, so the resolver
// falls back to its "no information available" context strings.
type NopInfoSource struct{}

func (NopInfoSource) UserInfo(context.Context, string) (string, error) {
	return "", errors.New("no info source configured")
}

func (NopInfoSource) GuildInfo(context.Context) (string, error) {
	return "", errors.New("no info source configured")
}

// Request is everything one triggered message brings to the pipeline.
// History is the reply-chain reconstruction, oldest first, without the
// system message; the pipeline synthesizes that itself.
type Request struct {
	User     db.User
	History  []llm.Message
	Env      Environment
	Info     InfoSource
	Progress Notifier
}

type Pipeline struct {
	store   Store
	client  llm.Client
	counter *tokenizer.Counter
}

func New(store Store, client llm.Client, counter *tokenizer.Counter) *Pipeline {
	return &Pipeline{store: store, client: client, counter: counter}
}

// Respond runs the full conversation-to-response pipeline and returns the
// deliverable result. All failures are absorbed into a Result; nothing
// escapes as an error the caller could drop on the floor.
func (p *Pipeline) Respond(ctx context.Context, req Request) Result {
	id := uuid.NewString()[:8]
	if req.Progress == nil {
		req.Progress = NopNotifier{}
	}
	if req.Info == nil {
		req.Info = NopInfoSource{}
	}

	entry, ok := pricing.Lookup(req.User.Model)
	if !ok {
		log.Printf("[%s] user %s has unpriced model %q", id, req.User.ID, req.User.Model)
		return Result{Kind: KindProviderFailure, Text: ReplyTechnicalDifficulties}
	}

	conversation := make([]llm.Message, 0, len(req.History)+1)
	conversation = append(conversation, llm.Message{
		Role:    "system",
		Content: systemPrompt(req.Env, req.User.Model),
	})
	conversation = append(conversation, req.History...)

	promptTokens, err := p.counter.Count(req.User.Model, conversationText(conversation))
	if err != nil {
		log.Printf("[%s] counting prompt tokens: %v", id, err)
		return Result{Kind: KindProviderFailure, Text: ReplyTechnicalDifficulties}
	}

	// Pre-spend gate: if the prompt alone is unaffordable, nothing is
	// generated and nothing is charged.
	promptPrice := entry.Price(promptTokens, 0)
	if promptPrice > req.User.Credits {
		log.Printf("[%s] user %s cannot afford prompt: %d > %d credits",
			id, req.User.ID, promptPrice, req.User.Credits)
		return Result{Kind: KindInsufficientCredit, Text: ReplyInsufficientCredit}
	}

	budget := entry.ResponseTokenBudget(req.User.Credits - promptPrice)
	maxTokens := entry.MaxTokens - promptTokens
	if budget < maxTokens {
		maxTokens = budget
	}
	if maxTokens <= 0 {
		log.Printf("[%s] user %s has no response budget", id, req.User.ID)
		return Result{Kind: KindInsufficientCredit, Text: ReplyInsufficientCredit}
	}

	text, kind := p.generate(ctx, id, req.User.Model, conversation, maxTokens, req.Progress)
	if kind != KindOK {
		return Result{Kind: kind, Text: replyFor(kind)}
	}

	// Ask-back loop: the model may request auxiliary context before it
	// commits to an answer. Bounded so it always terminates.
	rounds := 0
	for ; rounds < maxAskBackRounds; rounds++ {
		d := ParseDirective(text)
		if d.Kind == DirectiveNone || d.Kind == DirectiveMalformed {
			break
		}

		var contextMsg string
		switch d.Kind {
		case DirectiveUserInfo:
			log.Printf("[%s] asking back for user information on %s", id, d.TargetID)
			req.Progress.Notify("Asking back for user information...")
			info, err := req.Info.UserInfo(ctx, d.TargetID)
			if err != nil {
				log.Printf("[%s] fetching user info: %v", id, err)
				info = "No information about that user is available."
			}
			contextMsg = info
		case DirectiveGuildInfo:
			log.Printf("[%s] asking back for guild information", id)
			req.Progress.Notify("Asking back for guild information...")
			info, err := req.Info.GuildInfo(ctx)
			if err != nil {
				log.Printf("[%s] fetching guild info: %v", id, err)
				info = "No information about this guild is available."
			}
			contextMsg = "We are currently in " + info
		}

		conversation = append(conversation, llm.Message{Role: "user", Content: contextMsg})
		text, kind = p.generate(ctx, id, req.User.Model, conversation, maxTokens, req.Progress)
		if kind != KindOK {
			return Result{Kind: kind, Text: replyFor(kind)}
		}
	}
	if rounds == maxAskBackRounds {
		if d := ParseDirective(text); d.Kind == DirectiveUserInfo || d.Kind == DirectiveGuildInfo {
			log.Printf("[%s] ask-back bound reached, giving up", id)
			text = ReplyAskBackLimit
		}
	}
	if text == "" {
		text = ReplyEmpty
	}

	// Settlement: price actual usage and debit. Response tokens are
	// counted with the same encoder that priced the prompt.
	responseTokens, err := p.counter.Count(req.User.Model, text)
	if err != nil {
		log.Printf("[%s] counting response tokens: %v", id, err)
		return Result{Kind: KindProviderFailure, Text: ReplyTechnicalDifficulties}
	}
	charge := entry.Price(promptTokens, responseTokens)
	balance, err := p.store.DebitCredits(req.User.ID, charge)
	if err != nil {
		// The answer exists and the user should get it; losing the debit
		// is the lesser failure. Log loudly and deliver anyway.
		log.Printf("[%s] debiting %d credits from %s failed: %v", id, charge, req.User.ID, err)
	} else {
		log.Printf("[%s] charged %d credits (%d prompt + %d response tokens), balance %d",
			id, charge, promptTokens, responseTokens, balance)
	}

	return Result{Kind: KindOK, Text: rewriteGifMarkup(text), Charged: charge}
}

// generate runs one streaming call, accumulating fragments and editing
// the progress surface every time another chunk boundary is crossed.
func (p *Pipeline) generate(ctx context.Context, id, model string, conversation []llm.Message, maxTokens int, progress Notifier) (string, Kind) {
	stream, err := p.client.Stream(ctx, llm.Request{
		Model:       model,
		Messages:    conversation,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", classify(id, err)
	}
	defer stream.Close()

	var full strings.Builder
	sentParts := 1
	for stream.Next() {
		fragment := stream.Text()
		if fragment == "" {
			continue
		}
		full.WriteString(fragment)
		if full.Len()/progressChunkChars > sentParts {
			sentParts++
			progress.Notify(progressText(full.String()))
		}
	}
	if err := stream.Err(); err != nil {
		return "", classify(id, err)
	}
	return full.String(), KindOK
}

func classify(id string, err error) Kind {
	if llm.IsRateLimited(err) {
		log.Printf("[%s] rate limited: %v", id, err)
		return KindRateLimited
	}
	log.Printf("[%s] provider error: %v", id, err)
	return KindProviderFailure
}

// progressText renders the rate-limited progress projection: a running
// character count plus a truncated preview of the text so far.
func progressText(full string) string {
	text := fmt.Sprintf("Generating response... (this may take a while) (%d characters received)", len(full))
	if len(full) < previewLimit {
		return text + "\n\n" + full
	}
	return text + "\n\n" + full[:previewLimit] + "...\n\n*...truncated* (Please wait for the full response.)"
}

// conversationText is the canonical text the prompt cost is computed
// from: message contents joined by newlines.
func conversationText(messages []llm.Message) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}

// @gif(term) markup is passed through as the bare search term. Rendering
// an actual media link never made it in; the defanged text is the
// documented behavior.
var gifMarkup = regexp.MustCompile(`@gif\((.+?)\)`)

func rewriteGifMarkup(s string) string {
	return gifMarkup.ReplaceAllString(s, "$1")
}

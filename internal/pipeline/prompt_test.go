package pipeline

import (
	"strings"
	"testing"

	"github.com/coasterfreak/opengpt/internal/llm"
)

func TestSystemPrompt_EnvironmentFacts(t *testing.T) {
	got := systemPrompt(testEnv(), "gpt-3.5-turbo")

	for _, want := range []string{
		"OpenGPT",
		"tester#0001",
		"UserID: 42",
		"DevSky (ID: 1)",
		"general (ID: 2)",
		"2024-05-01T12:00:00Z",
		"<@999>",
		"!model",
		"!credits",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestSystemPrompt_DirectiveGrammarPremiumOnly(t *testing.T) {
	premium := systemPrompt(testEnv(), "gpt-4")
	if !strings.Contains(premium, "(ui)") || !strings.Contains(premium, "(gi)") {
		t.Error("premium prompt should teach the ask-back directives")
	}

	standard := systemPrompt(testEnv(), "gpt-3.5-turbo")
	if strings.Contains(standard, "(ui)") || strings.Contains(standard, "(gi)") {
		t.Error("standard prompt must not teach the ask-back directives")
	}
}

func TestConversationText(t *testing.T) {
	got := conversationText([]llm.Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hello"},
	})
	if got != "be nice\nhello" {
		t.Errorf("conversationText = %q", got)
	}
}

package discord

import (
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
)

const testBotID = "999"

func testSession(t *testing.T) *discordgo.Session {
	t.Helper()
	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: testBotID}
	return s
}

func msg(id, authorID, content string, replyTo *discordgo.Message) *discordgo.Message {
	m := &discordgo.Message{
		ID:        id,
		ChannelID: "chan",
		Author:    &discordgo.User{ID: authorID},
		Content:   content,
	}
	if replyTo != nil {
		m.MessageReference = &discordgo.MessageReference{
			MessageID: replyTo.ID,
			ChannelID: replyTo.ChannelID,
		}
		m.ReferencedMessage = replyTo
	}
	return m
}

func TestConversationHistory_ChainOrder(t *testing.T) {
	s := testSession(t)
	b := &Bot{session: s}

	// C replies to B replies to A; the bot authored B.
	a := msg("a", "42", "first question", nil)
	bMsg := msg("b", testBotID, "first answer", a)
	c := msg("c", "42", "follow-up", bMsg)

	history, err := b.conversationHistory(s, c)
	if err != nil {
		t.Fatalf("conversationHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history has %d messages, want 3", len(history))
	}

	wantContents := []string{"first question", "first answer", "follow-up"}
	wantRoles := []string{"user", "assistant", "user"}
	for i := range history {
		if history[i].Content != wantContents[i] {
			t.Errorf("history[%d].Content = %q, want %q", i, history[i].Content, wantContents[i])
		}
		if history[i].Role != wantRoles[i] {
			t.Errorf("history[%d].Role = %q, want %q", i, history[i].Role, wantRoles[i])
		}
	}
}

func TestConversationHistory_SingleMessage(t *testing.T) {
	s := testSession(t)
	b := &Bot{session: s}

	history, err := b.conversationHistory(s, msg("a", "42", "hello", nil))
	if err != nil {
		t.Fatalf("conversationHistory: %v", err)
	}
	if len(history) != 1 || history[0].Content != "hello" || history[0].Role != "user" {
		t.Errorf("history = %+v", history)
	}
}

func TestConversationHistory_CycleTerminates(t *testing.T) {
	s := testSession(t)
	b := &Bot{session: s}

	// Forge a reference cycle between a and b. The walk must terminate.
	a := msg("a", "42", "one", nil)
	bMsg := msg("b", "42", "two", a)
	a.MessageReference = &discordgo.MessageReference{MessageID: "b", ChannelID: "chan"}
	a.ReferencedMessage = bMsg

	history, err := b.conversationHistory(s, a)
	if err != nil {
		t.Fatalf("conversationHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history has %d messages, want 2 (cycle must be cut)", len(history))
	}
}

func TestConversationHistory_DepthBound(t *testing.T) {
	s := testSession(t)
	b := &Bot{session: s}

	// A chain longer than the cap is truncated at the cap.
	var prev *discordgo.Message
	for i := 0; i < maxChainDepth+20; i++ {
		prev = msg(strconv.Itoa(i), "42", "msg", prev)
	}

	history, err := b.conversationHistory(s, prev)
	if err != nil {
		t.Fatalf("conversationHistory: %v", err)
	}
	if len(history) != maxChainDepth {
		t.Errorf("history has %d messages, want %d", len(history), maxChainDepth)
	}
}

package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/coasterfreak/opengpt/internal/llm"
)

// maxChainDepth bounds the reply-chain walk. Discord shouldn't produce
// reference cycles, but the walk trusts nothing: a visited set and a
// depth cap guarantee termination.
const maxChainDepth = 50

// conversationHistory rebuilds the conversation by walking reply
// references from the triggering message back to the chain root. The
// result is ordered oldest first; messages authored by the bot are
// classified assistant, everything else user.
func (b *Bot) conversationHistory(s *discordgo.Session, m *discordgo.Message) ([]llm.Message, error) {
	var newestFirst []llm.Message
	visited := make(map[string]bool)

	cur := m
	for cur != nil && len(newestFirst) < maxChainDepth {
		if visited[cur.ID] {
			break
		}
		visited[cur.ID] = true

		role := "user"
		if cur.Author != nil && cur.Author.ID == s.State.User.ID {
			role = "assistant"
		}
		newestFirst = append(newestFirst, llm.Message{Role: role, Content: cur.Content})

		if cur.MessageReference == nil || cur.MessageReference.MessageID == "" {
			break
		}
		next := cur.ReferencedMessage
		if next == nil {
			fetched, err := s.ChannelMessage(cur.MessageReference.ChannelID, cur.MessageReference.MessageID)
			if err != nil {
				return nil, fmt.Errorf("fetching referenced message %s: %w",
					cur.MessageReference.MessageID, err)
			}
			next = fetched
		}
		cur = next
	}

	// Reverse into chronological order, oldest ancestor first.
	history := make([]llm.Message, len(newestFirst))
	for i, msg := range newestFirst {
		history[len(newestFirst)-1-i] = msg
	}
	return history, nil
}

package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/coasterfreak/opengpt/internal/pipeline"
	"github.com/coasterfreak/opengpt/internal/pricing"
)

// Discord caps messages at 2000 characters; anything past this goes to
// the paste service so the link reply still fits comfortably.
const pasteThreshold = 1850

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore own messages
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	content := strings.TrimSpace(stripMention(m.Content, s.State.User.ID))
	if b.handleCommand(s, m, content) {
		return
	}

	// Only respond when mentioned or when someone replies to the bot
	mentioned := false
	for _, u := range m.Mentions {
		if u.ID == s.State.User.ID {
			mentioned = true
			break
		}
	}
	repliedToBot := m.ReferencedMessage != nil &&
		m.ReferencedMessage.Author != nil &&
		m.ReferencedMessage.Author.ID == s.State.User.ID
	if !mentioned && !repliedToBot {
		return
	}

	thinking, err := s.ChannelMessageSendReply(m.ChannelID,
		"Let me think for a moment... (this may take a while)", m.Reference())
	if err != nil {
		log.Printf("sending thinking message: %v", err)
		return
	}

	// The websocket dispatch goroutine must not block on a generation.
	go b.respond(s, m, thinking)
}

// handleCommand services the !credits and !model text commands. Returns
// true when the message was a command and needs no pipeline run.
func (b *Bot) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate, content string) bool {
	cmd, arg := parseCommand(content)
	switch cmd {
	case "credits":
		user, err := b.db.GetUser(m.Author.ID)
		if err != nil {
			log.Printf("loading user %s: %v", m.Author.ID, err)
			b.reply(s, m.Message, pipeline.ReplyTechnicalDifficulties)
			return true
		}
		b.reply(s, m.Message, fmt.Sprintf("You have **%s** credits. Your current model is `%s`.",
			humanize.Comma(user.Credits), user.Model))
		return true

	case "model":
		if !pricing.Supported(arg) {
			b.reply(s, m.Message, fmt.Sprintf("I don't know that model. Available models: `%s`.",
				strings.Join(pricing.Models(), "`, `")))
			return true
		}
		if err := b.db.SetModel(m.Author.ID, arg); err != nil {
			log.Printf("setting model for %s: %v", m.Author.ID, err)
			b.reply(s, m.Message, pipeline.ReplyTechnicalDifficulties)
			return true
		}
		b.reply(s, m.Message, fmt.Sprintf("Done! You are now talking to `%s`.", arg))
		return true
	}
	return false
}

// respond runs the whole pipeline for one triggering message and
// delivers the outcome. Runs on its own goroutine; everything here is
// best-effort and absorbed locally.
func (b *Bot) respond(s *discordgo.Session, m *discordgo.MessageCreate, thinking *discordgo.Message) {
	ctx := context.Background()

	user, err := b.db.GetUser(m.Author.ID)
	if err != nil {
		log.Printf("loading user %s: %v", m.Author.ID, err)
		b.reply(s, m.Message, pipeline.ReplyTechnicalDifficulties)
		b.deleteThinking(s, thinking)
		return
	}

	history, err := b.conversationHistory(s, m.Message)
	if err != nil {
		log.Printf("walking reply chain: %v", err)
		b.reply(s, m.Message, pipeline.ReplyTechnicalDifficulties)
		b.deleteThinking(s, thinking)
		return
	}

	notifier := &thinkingNotifier{session: s, channelID: thinking.ChannelID, messageID: thinking.ID}
	notifier.Notify("Context found. Generating response... (this may take a while)")

	res := b.pipeline.Respond(ctx, pipeline.Request{
		User:     user,
		History:  history,
		Env:      b.environment(s, m),
		Info:     &infoSource{db: b.db, session: s, guildID: m.GuildID},
		Progress: notifier,
	})

	b.deliver(ctx, s, m, res)
	b.deleteThinking(s, thinking)
}

// deliveryText decides what actually gets sent for a result: short
// answers pass through, oversized answers become a paste link, and a
// failed upload becomes the generic apology plus a refund of whatever
// was charged. Users only pay for answers they actually receive.
func deliveryText(ctx context.Context, res pipeline.Result, upload func(context.Context, string) (string, error)) (text string, refund int64) {
	if res.Kind != pipeline.KindOK || len(res.Text) <= pasteThreshold {
		return res.Text, 0
	}
	url, err := upload(ctx, res.Text)
	if err != nil {
		log.Printf("uploading long response: %v", err)
		return pipeline.ReplyTechnicalDifficulties, res.Charged
	}
	return "I'm ready! But the message is too long for Discord.\nI uploaded it here for you: " + url, 0
}

func (b *Bot) deliver(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, res pipeline.Result) {
	text, refund := deliveryText(ctx, res, b.paste.Upload)
	if refund > 0 {
		if _, err := b.db.AddCredits(m.Author.ID, refund); err != nil {
			log.Printf("refunding %d credits to %s: %v", refund, m.Author.ID, err)
		}
	}
	b.reply(s, m.Message, text)
}

func (b *Bot) reply(s *discordgo.Session, m *discordgo.Message, content string) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Printf("sending reply: %v", err)
	}
}

func (b *Bot) deleteThinking(s *discordgo.Session, thinking *discordgo.Message) {
	if err := s.ChannelMessageDelete(thinking.ChannelID, thinking.ID); err != nil {
		log.Printf("deleting thinking message: %v", err)
	}
}

// environment gathers the live facts the system prompt mentions. Missing
// guild/channel metadata degrades to empty strings rather than failing
// the request.
func (b *Bot) environment(s *discordgo.Session, m *discordgo.MessageCreate) pipeline.Environment {
	env := pipeline.Environment{
		BotID:       s.State.User.ID,
		UserDisplay: m.Author.Username,
		UserID:      m.Author.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		Now:         time.Now().UTC(),
	}
	if g, err := s.State.Guild(m.GuildID); err == nil {
		env.GuildName = g.Name
	} else if g, err := s.Guild(m.GuildID); err == nil {
		env.GuildName = g.Name
	}
	if c, err := s.State.Channel(m.ChannelID); err == nil {
		env.ChannelName = c.Name
	} else if c, err := s.Channel(m.ChannelID); err == nil {
		env.ChannelName = c.Name
	}
	return env
}

// thinkingNotifier projects pipeline progress onto the thinking message.
// Edits are best-effort: a transient edit failure must never lose an
// otherwise-successful generation.
type thinkingNotifier struct {
	session   *discordgo.Session
	channelID string
	messageID string
}

func (n *thinkingNotifier) Notify(text string) {
	_, err := n.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:         n.channelID,
		ID:              n.messageID,
		Content:         &text,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Printf("editing progress message: %v", err)
	}
}

func stripMention(s, userID string) string {
	s = strings.ReplaceAll(s, "<@"+userID+">", "")
	s = strings.ReplaceAll(s, "<@!"+userID+">", "")
	return s
}

// parseCommand splits a "!name arg" command message. Non-commands return
// an empty name.
func parseCommand(content string) (name, arg string) {
	if !strings.HasPrefix(content, "!") {
		return "", ""
	}
	fields := strings.Fields(content[1:])
	if len(fields) == 0 {
		return "", ""
	}
	name = fields[0]
	if len(fields) > 1 {
		arg = fields[1]
	}
	return name, arg
}

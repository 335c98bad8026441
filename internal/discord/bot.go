package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/coasterfreak/opengpt/internal/db"
	"github.com/coasterfreak/opengpt/internal/paste"
	"github.com/coasterfreak/opengpt/internal/pipeline"
)

type Bot struct {
	session  *discordgo.Session
	db       *db.DB
	pipeline *pipeline.Pipeline
	paste    *paste.Client
}

func NewBot(token string, database *db.DB, p *pipeline.Pipeline, pasteClient *paste.Client) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating Discord session: %w", err)
	}

	bot := &Bot{session: s, db: database, pipeline: p, paste: pasteClient}
	s.AddHandler(bot.onMessage)
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("opening Discord connection: %w", err)
	}

	log.Printf("Discord bot connected as %s", s.State.User.Username)
	return bot, nil
}

func (b *Bot) Close() {
	b.session.Close()
}

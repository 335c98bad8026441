package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/coasterfreak/opengpt/internal/db"
)

// infoSource resolves the model's ask-back directives against Discord
// and the user store.
type infoSource struct {
	db      *db.DB
	session *discordgo.Session
	guildID string
}

func (i *infoSource) UserInfo(_ context.Context, userID string) (string, error) {
	account, err := i.db.GetUser(userID)
	if err != nil {
		return "", fmt.Errorf("loading account %s: %w", userID, err)
	}
	u, err := i.session.User(userID)
	if err != nil {
		return "", fmt.Errorf("fetching Discord user %s: %w", userID, err)
	}
	return fmt.Sprintf("User: %s (ID: %s, model: %s, credits: %d)",
		u.Username, account.ID, account.Model, account.Credits), nil
}

func (i *infoSource) GuildInfo(_ context.Context) (string, error) {
	g, err := i.session.State.Guild(i.guildID)
	if err != nil {
		g, err = i.session.Guild(i.guildID)
		if err != nil {
			return "", fmt.Errorf("fetching guild %s: %w", i.guildID, err)
		}
	}

	created := ""
	if ts, err := discordgo.SnowflakeTimestamp(g.ID); err == nil {
		created = ts.UTC().Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Guild: %s (%s)\n", g.Name, g.ID)
	fmt.Fprintf(&b, "Owner: <@%s>\n", g.OwnerID)
	fmt.Fprintf(&b, "Members: %d\n", g.MemberCount)
	if created != "" {
		fmt.Fprintf(&b, "Created: %s\n", created)
	}
	fmt.Fprintf(&b, "Boosts: %d\n", g.PremiumSubscriptionCount)
	fmt.Fprintf(&b, "Boost Level: %d\n", g.PremiumTier)
	if g.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", g.Description)
	}
	return b.String(), nil
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coasterfreak/opengpt/config"
	"github.com/coasterfreak/opengpt/internal/db"
	"github.com/coasterfreak/opengpt/internal/discord"
	"github.com/coasterfreak/opengpt/internal/llm"
	"github.com/coasterfreak/opengpt/internal/paste"
	"github.com/coasterfreak/opengpt/internal/pipeline"
	"github.com/coasterfreak/opengpt/internal/scheduler"
	"github.com/coasterfreak/opengpt/internal/tokenizer"
)

func main() {
	cfg := config.Load()

	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is not set")
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	client := llm.NewOpenAIClient(cfg.OpenAIKey)
	p := pipeline.New(database, client, tokenizer.NewCounter())

	bot, err := discord.NewBot(cfg.DiscordToken, database, p, paste.New())
	if err != nil {
		log.Fatalf("failed to start Discord bot: %v", err)
	}
	defer bot.Close()

	refill := scheduler.New(database, db.DefaultCredits)
	if err := refill.Start(cfg.RefillCron); err != nil {
		log.Fatalf("failed to start credit refill: %v", err)
	}
	defer refill.Stop()

	log.Println("bot is running. Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down.")
}

package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string
	OpenAIKey    string
	DatabasePath string
	RefillCron   string
}

func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		DatabasePath: envOr("DATABASE_PATH", "./data.db"),
		RefillCron:   envOr("CREDIT_REFILL_CRON", "0 0 * * *"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

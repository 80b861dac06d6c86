package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/storychain/story-chain-backend/internal/engine"
)

type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	Rules       engine.Rules
}

// Load reads .env when present, then the environment, falling back to the
// live game's defaults.
func Load() Config {
	_ = godotenv.Load()

	rules := engine.DefaultRules()
	rules.CollectSeconds = envInt("COLLECT_SECONDS", rules.CollectSeconds)
	rules.SelectSeconds = envInt("SELECT_SECONDS", rules.SelectSeconds)
	rules.StoryLengthTarget = envInt("STORY_LENGTH_TARGET", rules.StoryLengthTarget)
	if os.Getenv("AGGREGATION") == string(engine.AggregateByArrival) {
		rules.Aggregation = engine.AggregateByArrival
	}

	return Config{
		Addr:        envStr("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		Rules:       rules,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

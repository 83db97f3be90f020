package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}
	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		DryRun:        getEnvOr("DRY_RUN", "false") == "true",
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN"),
			ChannelID: getEnv("SLACK_CHANNEL_ID"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		Storage: StorageConfig{
			Endpoint:        getEnvOr("STORAGE_ENDPOINT", ""),
			Region:          getEnvOr("STORAGE_REGION", "auto"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY_ID"),
			AccessKeySecret: getEnv("STORAGE_ACCESS_KEY_SECRET"),
			Bucket:          getEnv("STORAGE_BUCKET"),
			BaseURL:         getEnv("STORAGE_BASE_URL"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
	}
	return cfg
}

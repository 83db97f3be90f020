package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	DryRun        bool
	Slack         SlackConfig
	Turso         TursoConfig
	Storage       StorageConfig
	ProjectID     string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// StorageConfig points at the S3-compatible bucket holding gallery photos.
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	BaseURL         string
}

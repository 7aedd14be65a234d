package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docvault-files"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Optional model-backed embedder. The deterministic embedder is the
	// default; both sides of the switch honor the same interface and
	// vector dimensionality.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	UseOpenAI    bool   `envconfig:"USE_OPENAI" default:"false"`

	// Embedding backfill worker
	EmbedPollInterval time.Duration `envconfig:"EMBED_POLL_INTERVAL" default:"30s"`
	EmbedBatchSize    int           `envconfig:"EMBED_BATCH_SIZE" default:"50"`
	EmbedConcurrency  int           `envconfig:"EMBED_CONCURRENCY" default:"4"`

	// Bootstrap: create an initial admin user and API key on startup
	InitAdminUser string `envconfig:"INIT_ADMIN_USER"`
	InitAPIKey    string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCVAULT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.UseOpenAI && c.OpenAIAPIKey != ""
}

package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Session store modes.
const (
	ModeServer    = "server"
	ModeStateless = "stateless"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// SessionMode selects where document sessions live: "server" keeps them
	// in process memory, "stateless" serializes them back to the caller.
	// This is a deployment-time decision, not a per-request one.
	SessionMode string `envconfig:"SESSION_MODE" default:"server"`

	// SessionTTL enables the janitor sweep for server-mode sessions.
	// Zero disables eviction, which is the documented default.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"0"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK         int `envconfig:"TOP_K" default:"5"`

	MaxUploadMB int64 `envconfig:"MAX_UPLOAD_MB" default:"10"`

	// OpenAIAPIKey is the server-side fallback credential. Callers may
	// override it per request via the Authorization header.
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4.1-mini"`
	EmbedBatchSize int    `envconfig:"EMBED_BATCH_SIZE" default:"100"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAPERCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.SessionMode != ModeServer && cfg.SessionMode != ModeStateless {
		return nil, fmt.Errorf("invalid session mode %q (want %q or %q)", cfg.SessionMode, ModeServer, ModeStateless)
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

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) Stateless() bool {
	return c.SessionMode == ModeStateless
}

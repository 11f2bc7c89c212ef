package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// SnapshotPath locates the local projection file.
	SnapshotPath string `env:"SNAPSHOT_PATH, default=data/snapshot.json"`

	OpenAIKey  string `env:"OPENAI_API_KEY"`
	WebhookURL string `env:"WEBHOOK_URL"`

	Remote RemoteConfig
	Redis  RedisConfig
}

// RemoteConfig holds the runtime-supplied remote replica credentials. Either
// field may be empty; resolution against persisted settings and the compiled
// fallback happens in Resolve.
type RemoteConfig struct {
	Endpoint  string `env:"REMOTE_ENDPOINT"`
	AccessKey string `env:"REMOTE_ACCESS_KEY"`
	Database  string `env:"REMOTE_DB, default=realty_crm"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

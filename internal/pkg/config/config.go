package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// BaseURL is the root of the guild backend's REST boundary.
	BaseURL     string        `env:"PROVISION_API_URL,      default=http://localhost:8080/api"`
	HTTPTimeout time.Duration `env:"PROVISION_HTTP_TIMEOUT, default=10s"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
)

type Config struct {
	ProjectName        string `env:"PROJECT_NAME" envDefault:"TemplateGoMongoDb"`
	ProjectVersion     string `env:"PROJECT_VERSION" envDefault:"0.0.1"`
	ProjectDescription string `env:"PROJECT_DESCRIPTION" envDefault:"Template for a Go REST API with MongoDB"`

	Port           int      `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	MongoURL          string `env:"MONGO_URL" envDefault:"mongodb://localhost:27017/"`
	DefaultDatabase   string `env:"DEFAULT_DATABASE" envDefault:"your_database"`
	MongoTransactions bool   `env:"MONGO_TRANSACTIONS" envDefault:"false"`

	APIToken string `env:"API_TOKEN"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
}

// Load reads the configuration from the environment (and .env, if present).
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIToken == "" {
		return fmt.Errorf("missing API_TOKEN environment variable")
	}
	if c.MongoURL == "" {
		return fmt.Errorf("missing MONGO_URL environment variable")
	}
	if c.DefaultDatabase == "" {
		return fmt.Errorf("missing DEFAULT_DATABASE environment variable")
	}
	if c.AdminUsername != "" && (c.AdminPassword == "" || c.AdminEmail == "") {
		return fmt.Errorf("ADMIN_USERNAME requires ADMIN_PASSWORD and ADMIN_EMAIL")
	}
	return nil
}

// ZerologLevel parses LogLevel, falling back to info.
func (c *Config) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// HasBootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminUsername != ""
}

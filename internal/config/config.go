// Package config loads the application configuration from config.yml, a .env
// file, and MEETSCRIBE_-prefixed environment variables, in increasing order
// of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/meetscribe/meetscribe/internal/auth"
	"github.com/meetscribe/meetscribe/internal/database"
	"github.com/meetscribe/meetscribe/internal/logger"
	"github.com/meetscribe/meetscribe/internal/server"
	"github.com/meetscribe/meetscribe/internal/session"
	"github.com/meetscribe/meetscribe/internal/speech"
	"github.com/meetscribe/meetscribe/internal/summarize/openai"
)

// Config aggregates every component's configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`

	Logger   logger.Config   `yaml:"logger" mapstructure:"logger"`
	Server   server.Config   `yaml:"server" mapstructure:"server"`
	Database database.Config `yaml:"database" mapstructure:"database"`
	Auth     auth.Config     `yaml:"auth" mapstructure:"auth"`
	Session  session.Config  `yaml:"session" mapstructure:"session"`
	Speech   speech.Config   `yaml:"speech" mapstructure:"speech"`
	OpenAI   openai.Config   `yaml:"openai" mapstructure:"openai"`
}

// ApplyDefaults fills every section's zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "meetscribe"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Logger.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Speech.ApplyDefaults()
	c.OpenAI.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	validators := []struct {
		name string
		fn   func() error
	}{
		{"logger", c.Logger.Validate},
		{"server", c.Server.Validate},
		{"database", c.Database.Validate},
		{"auth", c.Auth.Validate},
		{"session", c.Session.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return nil
}

// Load reads configuration from the given file (or the default search
// locations when empty), overlays .env and environment variables, and
// validates the result.
func Load(configFile string) (*Config, error) {
	if envFile := findFile(".env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("MEETSCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys to Unmarshal; the
	// secrets are never written to config.yml so they need explicit binds.
	for _, key := range []string{"auth.secret", "speech.key", "openai.api_key"} {
		_ = v.BindEnv(key)
	}

	if configFile == "" {
		configFile = findFile("config.yml")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findFile searches the working directory and cmd/meetscribe for name.
func findFile(name string) string {
	for _, path := range []string{
		name,
		"cmd/meetscribe/" + name,
		"../" + name,
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Package auth provides account registration, login, password hashing, and
// JWT token issuance.
package auth

import (
	"errors"
	"time"
)

// Config configures token issuance.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// Issuer is the "iss" claim on issued tokens.
	Issuer string `mapstructure:"issuer" yaml:"issuer"`

	// AccessTokenTTL is the lifetime of access tokens.
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" yaml:"access_token_ttl"`

	// RefreshTokenTTL is the lifetime of refresh tokens.
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`

	// BcryptCost is the password hashing cost.
	BcryptCost int `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "meetscribe"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RefreshTokenTTL == 0 {
		c.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("auth: secret is required")
	}
	if len(c.Secret) < 32 {
		return errors.New("auth: secret must be at least 32 bytes")
	}
	return nil
}

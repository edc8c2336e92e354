// Package session runs live recording sessions: it pipes recognition events
// from a speech stream through the transcript engine, autosaves the result,
// and broadcasts updates to subscribed clients.
package session

import (
	"errors"
	"time"
)

// Config configures recording session behavior.
type Config struct {
	// AutosaveInterval is how often an in-progress transcript is persisted.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" yaml:"autosave_interval"`

	// StopTimeout bounds stream teardown and the final save on stop.
	StopTimeout time.Duration `mapstructure:"stop_timeout" yaml:"stop_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.AutosaveInterval == 0 {
		c.AutosaveInterval = 10 * time.Second
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = 15 * time.Second
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.AutosaveInterval < time.Second {
		return errors.New("session: autosave_interval must be at least 1s")
	}
	return nil
}

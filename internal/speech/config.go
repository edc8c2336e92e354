package speech

import "fmt"

// Config is the per-session speech configuration value object. A fresh value
// is constructed for every recording session and handed to the provider, so
// no configuration state is shared across concurrent sessions.
type Config struct {
	// Key is the subscription key for the speech service.
	Key string `yaml:"key" mapstructure:"key"`
	// Region is the service region (e.g. "westeurope").
	Region string `yaml:"region" mapstructure:"region"`
	// Language is the recognition language (default "en-US").
	Language string `yaml:"language" mapstructure:"language"`
	// MaxSpeakers hints the expected number of speakers for diarization.
	MaxSpeakers int `yaml:"max_speakers" mapstructure:"max_speakers"`
	// Endpoint overrides the websocket endpoint. Derived from Region if empty.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "en-US"
	}
	if c.MaxSpeakers == 0 {
		c.MaxSpeakers = 2
	}
	if c.Endpoint == "" && c.Region != "" {
		c.Endpoint = fmt.Sprintf("wss://%s.stt.speech.microsoft.com/speech/universal/v2", c.Region)
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("speech key is required")
	}
	if c.Region == "" && c.Endpoint == "" {
		return fmt.Errorf("speech region or endpoint is required")
	}
	if c.MaxSpeakers < 0 {
		return fmt.Errorf("max_speakers must be non-negative (got: %d)", c.MaxSpeakers)
	}
	return nil
}

package auth

import (
	"fmt"
	"time"
)

// Config configures HMAC-signed bearer tokens.
type Config struct {
	Secret   string        `yaml:"secret" mapstructure:"secret"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	Audience string        `yaml:"audience" mapstructure:"audience"`
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.TokenTTL == 0 {
		c.TokenTTL = 15 * time.Minute
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be non-negative (got: %s)", c.TokenTTL)
	}
	return nil
}

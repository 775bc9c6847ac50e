package config

import (
	"fmt"

	"github.com/nisix/errkit/logger"
)

// ServiceConfig contains the essential configuration fields every service needs.
// Projects extend this by embedding it in their own config structs.
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	// Debug exposes stack traces in error responses. Nil means "not set";
	// ApplyDefaults then derives it from Environment.
	Debug   *bool         `yaml:"debug" mapstructure:"debug"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
//
// An empty Environment is taken from the process environment (ENVIRONMENT,
// then APP_ENV). An unset Debug is false whenever either the configured
// environment or the process environment is production.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = Environment()
	}
	c.Environment = normalizeEnvironment(c.Environment)
	if c.Debug == nil {
		debug := !c.IsProduction() && !IsProduction()
		c.Debug = &debug
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !isValidEnvironment(c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvironments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment.
func (c *ServiceConfig) IsProduction() bool {
	return isProductionName(c.Environment)
}

// DebugEnabled returns the resolved debug flag. Call ApplyDefaults first;
// an unset flag follows the same production rule as ApplyDefaults.
func (c *ServiceConfig) DebugEnabled() bool {
	if c.Debug == nil {
		return !c.IsProduction() && !IsProduction()
	}
	return *c.Debug
}

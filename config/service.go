package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/multimongo/logger"
	"github.com/kbukum/multimongo/observability"
)

// ServiceConfig contains the fields every multimongo process needs. Embed
// it in larger config structs:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server ServerConfig `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name          string               `yaml:"name" mapstructure:"name"`
	Environment   string               `yaml:"environment" mapstructure:"environment"`
	Version       string               `yaml:"version" mapstructure:"version"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

var environments = []string{"development", "staging", "production"}

// GetServiceConfig returns the receiver. Embedding structs get it promoted.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Development enables debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "multimongo"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the base fields and the logging section.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}

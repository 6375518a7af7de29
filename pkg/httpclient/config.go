package httpclient

import (
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
)

// Config represents download client configuration options
type Config struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	CAFile    string        `yaml:"ca_file"`

	RetryConfig *RetryConfig `yaml:"retry"`

	// Consecutive failed attempts that open the circuit breaker.
	BreakerThreshold uint32        `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

// RetryConfig defines retry behavior for failed requests
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// DefaultConfig returns the configuration used for license and installer downloads.
func DefaultConfig() *Config {
	return &Config{
		Timeout:   10 * time.Minute,
		UserAgent: shared.NyxID + "/" + shared.Version,
		RetryConfig: &RetryConfig{
			MaxRetries:   4,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
		BreakerThreshold: 6,
		BreakerCooldown:  30 * time.Second,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Message: "must be positive"}
	}
	if c.RetryConfig != nil {
		if c.RetryConfig.MaxRetries < 0 {
			return &ConfigError{Field: "retry.max_retries", Message: "cannot be negative"}
		}
		if c.RetryConfig.Multiplier != 0 && c.RetryConfig.Multiplier < 1 {
			return &ConfigError{Field: "retry.multiplier", Message: "must be at least 1"}
		}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

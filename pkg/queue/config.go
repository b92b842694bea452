package queue

import (
	"fmt"
	"os"
	"time"
)

// Config holds Azure Queue Storage connection parameters.
type Config struct {
	ConnectionString string `toml:"connection_string"`
	QueueName        string `toml:"queue_name"`
	EnqueueTimeout   string `toml:"enqueue_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ConnectionString string
	QueueName        string
	EnqueueTimeout   string
}

// EnqueueTimeoutDuration returns EnqueueTimeout as a time.Duration.
func (c *Config) EnqueueTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.EnqueueTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.QueueName != "" {
		c.QueueName = overlay.QueueName
	}
	if overlay.EnqueueTimeout != "" {
		c.EnqueueTimeout = overlay.EnqueueTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.QueueName == "" {
		c.QueueName = "pre-label-queue"
	}
	if c.EnqueueTimeout == "" {
		c.EnqueueTimeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.QueueName != "" {
		if v := os.Getenv(env.QueueName); v != "" {
			c.QueueName = v
		}
	}
	if env.EnqueueTimeout != "" {
		if v := os.Getenv(env.EnqueueTimeout); v != "" {
			c.EnqueueTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if c.QueueName == "" {
		return fmt.Errorf("queue_name required")
	}
	if _, err := time.ParseDuration(c.EnqueueTimeout); err != nil {
		return fmt.Errorf("invalid enqueue_timeout: %w", err)
	}
	return nil
}

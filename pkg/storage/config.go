package storage

import (
	"fmt"
	"os"
	"time"
)

// Containers names the blob container backing each pipeline stage artifact.
type Containers struct {
	Documents string `toml:"documents"`
	PreLabels string `toml:"pre_labels"`
	Labelling string `toml:"labelling"`
	Labels    string `toml:"labels"`
}

// All returns the configured container names in a stable order.
func (c Containers) All() []string {
	return []string{c.Documents, c.PreLabels, c.Labelling, c.Labels}
}

// Config holds Azure Blob Storage connection parameters and the stage
// container mapping.
type Config struct {
	ConnectionString string     `toml:"connection_string"`
	OpTimeout        string     `toml:"op_timeout"`
	Containers       Containers `toml:"containers"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ConnectionString string
	OpTimeout        string
}

// OpTimeoutDuration returns OpTimeout as a time.Duration.
func (c *Config) OpTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.OpTimeout)
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
	if overlay.OpTimeout != "" {
		c.OpTimeout = overlay.OpTimeout
	}
	if overlay.Containers.Documents != "" {
		c.Containers.Documents = overlay.Containers.Documents
	}
	if overlay.Containers.PreLabels != "" {
		c.Containers.PreLabels = overlay.Containers.PreLabels
	}
	if overlay.Containers.Labelling != "" {
		c.Containers.Labelling = overlay.Containers.Labelling
	}
	if overlay.Containers.Labels != "" {
		c.Containers.Labels = overlay.Containers.Labels
	}
}

func (c *Config) loadDefaults() {
	if c.OpTimeout == "" {
		c.OpTimeout = "30s"
	}
	if c.Containers.Documents == "" {
		c.Containers.Documents = "documents"
	}
	if c.Containers.PreLabels == "" {
		c.Containers.PreLabels = "pre-labels"
	}
	if c.Containers.Labelling == "" {
		c.Containers.Labelling = "labelling"
	}
	if c.Containers.Labels == "" {
		c.Containers.Labels = "labels"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.OpTimeout != "" {
		if v := os.Getenv(env.OpTimeout); v != "" {
			c.OpTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if _, err := time.ParseDuration(c.OpTimeout); err != nil {
		return fmt.Errorf("invalid op_timeout: %w", err)
	}
	for _, name := range c.Containers.All() {
		if name == "" {
			return fmt.Errorf("all stage containers required")
		}
	}
	return nil
}

package identity

import (
	"fmt"
	"os"
)

// Config holds authentication and group-resolution settings.
type Config struct {
	Issuer         string `toml:"issuer"`
	ClientID       string `toml:"client_id"`
	UsernameClaim  string `toml:"username_claim"`
	TrustedHeader  string `toml:"trusted_header"`
	ReviewersGroup string `toml:"reviewers_group"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Issuer         string
	ClientID       string
	UsernameClaim  string
	TrustedHeader  string
	ReviewersGroup string
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
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.UsernameClaim != "" {
		c.UsernameClaim = overlay.UsernameClaim
	}
	if overlay.TrustedHeader != "" {
		c.TrustedHeader = overlay.TrustedHeader
	}
	if overlay.ReviewersGroup != "" {
		c.ReviewersGroup = overlay.ReviewersGroup
	}
}

func (c *Config) loadDefaults() {
	if c.UsernameClaim == "" {
		c.UsernameClaim = "preferred_username"
	}
	if c.ReviewersGroup == "" {
		c.ReviewersGroup = "reviewers"
	}
	if c.Issuer == "" && c.TrustedHeader == "" {
		c.TrustedHeader = "X-Forwarded-User"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.UsernameClaim != "" {
		if v := os.Getenv(env.UsernameClaim); v != "" {
			c.UsernameClaim = v
		}
	}
	if env.TrustedHeader != "" {
		if v := os.Getenv(env.TrustedHeader); v != "" {
			c.TrustedHeader = v
		}
	}
	if env.ReviewersGroup != "" {
		if v := os.Getenv(env.ReviewersGroup); v != "" {
			c.ReviewersGroup = v
		}
	}
}

func (c *Config) validate() error {
	if c.Issuer != "" && c.ClientID == "" {
		return fmt.Errorf("client_id required when issuer is set")
	}
	return nil
}

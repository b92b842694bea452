package annotations

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds workflow tuning: the fixed audit timezone, the acceptance
// spot-check escalation probability, the group reviewers are drawn from,
// and the actor name attributed to model-produced pre-labels.
type Config struct {
	AuditTimezone         string  `toml:"audit_timezone"`
	EscalationProbability float64 `toml:"escalation_probability"`
	ReviewersGroup        string  `toml:"reviewers_group"`
	ModelActor            string  `toml:"model_actor"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AuditTimezone         string
	EscalationProbability string
	ReviewersGroup        string
	ModelActor            string
}

// Location returns the audit timezone. Finalize validates the name, so
// lookup failures cannot occur after configuration loading.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AuditTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
	if overlay.AuditTimezone != "" {
		c.AuditTimezone = overlay.AuditTimezone
	}
	if overlay.EscalationProbability != 0 {
		c.EscalationProbability = overlay.EscalationProbability
	}
	if overlay.ReviewersGroup != "" {
		c.ReviewersGroup = overlay.ReviewersGroup
	}
	if overlay.ModelActor != "" {
		c.ModelActor = overlay.ModelActor
	}
}

func (c *Config) loadDefaults() {
	if c.AuditTimezone == "" {
		c.AuditTimezone = "Asia/Kolkata"
	}
	if c.EscalationProbability == 0 {
		c.EscalationProbability = 0.2
	}
	if c.ReviewersGroup == "" {
		c.ReviewersGroup = "reviewers"
	}
	if c.ModelActor == "" {
		c.ModelActor = "inhouse-model"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AuditTimezone != "" {
		if v := os.Getenv(env.AuditTimezone); v != "" {
			c.AuditTimezone = v
		}
	}
	if env.EscalationProbability != "" {
		if v := os.Getenv(env.EscalationProbability); v != "" {
			if p, err := strconv.ParseFloat(v, 64); err == nil {
				c.EscalationProbability = p
			}
		}
	}
	if env.ReviewersGroup != "" {
		if v := os.Getenv(env.ReviewersGroup); v != "" {
			c.ReviewersGroup = v
		}
	}
	if env.ModelActor != "" {
		if v := os.Getenv(env.ModelActor); v != "" {
			c.ModelActor = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.AuditTimezone); err != nil {
		return fmt.Errorf("invalid audit_timezone: %w", err)
	}
	if c.EscalationProbability < 0 || c.EscalationProbability > 1 {
		return fmt.Errorf("escalation_probability must be within [0, 1]")
	}
	return nil
}

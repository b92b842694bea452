package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tally-ai/taggo/internal/annotations"
	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/database"
	"github.com/tally-ai/taggo/pkg/queue"
	"github.com/tally-ai/taggo/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTaggoEnv             = "TAGGO_ENV"
	EnvTaggoShutdownTimeout = "TAGGO_SHUTDOWN_TIMEOUT"
	EnvTaggoVersion         = "TAGGO_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TAGGO_DB_HOST",
	Port:            "TAGGO_DB_PORT",
	Name:            "TAGGO_DB_NAME",
	User:            "TAGGO_DB_USER",
	Password:        "TAGGO_DB_PASSWORD",
	SSLMode:         "TAGGO_DB_SSL_MODE",
	MaxOpenConns:    "TAGGO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TAGGO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TAGGO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TAGGO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ConnectionString: "TAGGO_STORAGE_CONNECTION_STRING",
	OpTimeout:        "TAGGO_STORAGE_OP_TIMEOUT",
}

var queueEnv = &queue.Env{
	ConnectionString: "TAGGO_QUEUE_CONNECTION_STRING",
	QueueName:        "TAGGO_QUEUE_NAME",
	EnqueueTimeout:   "TAGGO_QUEUE_ENQUEUE_TIMEOUT",
}

var identityEnv = &identity.Env{
	Issuer:         "TAGGO_IDENTITY_ISSUER",
	ClientID:       "TAGGO_IDENTITY_CLIENT_ID",
	UsernameClaim:  "TAGGO_IDENTITY_USERNAME_CLAIM",
	TrustedHeader:  "TAGGO_IDENTITY_TRUSTED_HEADER",
	ReviewersGroup: "TAGGO_IDENTITY_REVIEWERS_GROUP",
}

var workflowEnv = &annotations.Env{
	AuditTimezone:         "TAGGO_WORKFLOW_AUDIT_TIMEZONE",
	EscalationProbability: "TAGGO_WORKFLOW_ESCALATION_PROBABILITY",
	ReviewersGroup:        "TAGGO_WORKFLOW_REVIEWERS_GROUP",
	ModelActor:            "TAGGO_WORKFLOW_MODEL_ACTOR",
}

// Config is the root configuration for the Taggo service.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Database        database.Config    `toml:"database"`
	Storage         storage.Config     `toml:"storage"`
	Queue           queue.Config       `toml:"queue"`
	Identity        identity.Config    `toml:"identity"`
	Workflow        annotations.Config `toml:"workflow"`
	API             APIConfig          `toml:"api"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
}

// Env returns the TAGGO_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTaggoEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Queue.Merge(&overlay.Queue)
	c.Identity.Merge(&overlay.Identity)
	c.Workflow.Merge(&overlay.Workflow)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Queue.Finalize(queueEnv); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := c.Identity.Finalize(identityEnv); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := c.Workflow.Finalize(workflowEnv); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTaggoShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTaggoVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvTaggoEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

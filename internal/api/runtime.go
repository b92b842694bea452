package api

import (
	"github.com/tally-ai/taggo/internal/config"
	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/internal/infrastructure"
	"github.com/tally-ai/taggo/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped collaborators: the
// identity provider backed by the directory tables and the pagination
// defaults shared by list endpoints.
type Runtime struct {
	*infrastructure.Infrastructure
	Identity   identity.Provider
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Queue:     infra.Queue,
		},
		Identity:   identity.NewDirectory(infra.Database.Connection(), infra.Logger),
		Pagination: cfg.API.Pagination,
	}
}

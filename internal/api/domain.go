package api

import (
	"github.com/tally-ai/taggo/internal/annotations"
	"github.com/tally-ai/taggo/internal/config"
	"github.com/tally-ai/taggo/internal/dashboard"
	"github.com/tally-ai/taggo/internal/identity"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Annotations annotations.System
	Dashboard   dashboard.System
	Identity    *identity.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	annotationsSystem := annotations.New(
		annotations.Dependencies{
			Store:      annotations.NewStore(runtime.Database.Connection()),
			Blobs:      runtime.Storage,
			Sink:       runtime.Queue,
			Identity:   runtime.Identity,
			Containers: cfg.Storage.Containers,
		},
		cfg.Workflow,
		runtime.Pagination,
		runtime.Logger,
	)

	dashboardSystem := dashboard.New(
		runtime.Database.Connection(),
		runtime.Identity,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Annotations: annotationsSystem,
		Dashboard:   dashboardSystem,
		Identity:    identity.NewHandler(runtime.Identity, runtime.Logger),
	}
}

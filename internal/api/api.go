// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/tally-ai/taggo/internal/config"
	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/internal/infrastructure"
	"github.com/tally-ai/taggo/pkg/middleware"
	"github.com/tally-ai/taggo/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Requests pass CORS, request logging, and authentication before reaching
// any domain handler.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	auth, err := identity.NewAuthenticator(ctx, &cfg.Identity, runtime.Identity, runtime.Logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(auth.Middleware())

	return m, nil
}

package api

import (
	"net/http"

	"github.com/tally-ai/taggo/internal/config"
	"github.com/tally-ai/taggo/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Annotations.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Dashboard.Handler().Routes(),
		domain.Identity.Routes(),
	)
}

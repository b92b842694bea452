package identity

import (
	"log/slog"
	"net/http"

	"github.com/tally-ai/taggo/pkg/handlers"
	"github.com/tally-ai/taggo/pkg/routes"
)

// Handler provides HTTP endpoints for directory lookups.
type Handler struct {
	provider Provider
	logger   *slog.Logger
}

// NewHandler creates a Handler over the given provider.
func NewHandler(provider Provider, logger *slog.Logger) *Handler {
	return &Handler{
		provider: provider,
		logger:   logger.With("handler", "identity"),
	}
}

// Routes returns the route group definition for directory endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/users",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/groups", Handler: h.Groups},
		},
	}
}

// List returns every directory user for assignment pickers.
// Cross-user rosters are superuser-only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}
	if !actor.Role.Superuser {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	users, err := h.provider.Users(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, users)
}

// Groups returns every group roster plus the superusers list.
// Cross-user rosters are superuser-only.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrUnauthenticated)
		return
	}
	if !actor.Role.Superuser {
		handlers.RespondError(w, h.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	rosters, err := h.provider.Groups(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	superusers, err := h.provider.Superusers(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	names := make([]string, 0, len(superusers))
	for _, u := range superusers {
		names = append(names, u.Username)
	}
	rosters["superusers"] = names

	handlers.RespondJSON(w, http.StatusOK, rosters)
}

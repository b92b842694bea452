package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/handlers"
	"github.com/tally-ai/taggo/pkg/pagination"
	"github.com/tally-ai/taggo/pkg/routes"
)

// Handler provides HTTP endpoints for activity reports.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "dashboard"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for dashboard endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dashboard",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{username}", Handler: h.Activity},
		},
	}
}

// Activity returns a user's labelled and reviewed work for a date range.
// Bounds come from "from" and "to" query parameters in RFC 3339 form;
// either may be omitted.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return
	}

	window, err := rangeFromQuery(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	activity, err := h.sys.Activity(r.Context(), actor, r.PathValue("username"), window, page)
	if err != nil {
		handlers.RespondError(w, h.logger, identity.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, activity)
}

func rangeFromQuery(r *http.Request) (Range, error) {
	var window Range

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return Range{}, err
		}
		window.From = &t
	}

	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return Range{}, err
		}
		window.To = &t
	}

	return window, nil
}

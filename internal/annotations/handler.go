package annotations

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/handlers"
	"github.com/tally-ai/taggo/pkg/pagination"
	"github.com/tally-ai/taggo/pkg/routes"
)

// Handler provides HTTP endpoints for annotation workflow operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// RejectRequest carries the rejection reason alongside the working payload.
type RejectRequest struct {
	Reason  string          `json:"reason"`
	Payload json.RawMessage `json:"payload"`
}

// AssignRequest names the user to assign. A null username clears the assignee.
type AssignRequest struct {
	Username *string `json:"username"`
}

// SmartAssignRequest describes a bulk round-robin assignment.
type SmartAssignRequest struct {
	Status     string `json:"status"`
	Group      string `json:"group"`
	Percentage int    `json:"percentage"`
}

// SmartAssignResult reports how many records were assigned.
type SmartAssignResult struct {
	Assigned int `json:"assigned"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "annotations"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for annotation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/annotations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/counts", Handler: h.Counts},
			{Method: "GET", Pattern: "/assign-data", Handler: h.AssignOverview},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/smart-assign", Handler: h.SmartAssign},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/next", Handler: h.Next},
			{Method: "GET", Pattern: "/{id}/prev", Handler: h.Prev},
			{Method: "GET", Pattern: "/{id}/document", Handler: h.Document},
			{Method: "GET", Pattern: "/{id}/payload/{stage}", Handler: h.Payload},
			{Method: "PUT", Pattern: "/{id}/payload/{stage}", Handler: h.Save},
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit},
			{Method: "POST", Pattern: "/{id}/accept", Handler: h.Accept},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject},
			{Method: "POST", Pattern: "/{id}/assign", Handler: h.Assign},
		},
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	actor, ok := identity.ActorFrom(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, identity.ErrUnauthenticated)
		return identity.Actor{}, false
	}
	return actor, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// List returns a paginated list of annotations with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), actor, page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single annotation by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	v, err := h.sys.Get(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, v)
}

// Next returns the id of the annotation following the path id in the
// filtered listing order, or null at the edge.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.neighbor(w, r, true)
}

// Prev returns the id of the annotation preceding the path id in the
// filtered listing order, or null at the edge.
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request) {
	h.neighbor(w, r, false)
}

func (h *Handler) neighbor(w http.ResponseWriter, r *http.Request, forward bool) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	neighbor, err := h.sys.Neighbor(r.Context(), actor, id, FiltersFromQuery(r.URL.Query()), forward)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]*uuid.UUID{"id": neighbor})
}

// Upload processes a multipart form upload containing the source document.
// PDF page counts are extracted automatically using pdfcpu.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	cmd := UploadCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   extractPDFPageCount(h.logger, data, contentType),
	}

	a, err := h.sys.Upload(r.Context(), actor, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

// Document streams the source document blob.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rc, contentType, err := h.sys.Document(r.Context(), actor, id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("document stream interrupted", "id", id, "error", err)
	}
}

// Payload returns the stage artifact for an annotation.
func (h *Handler) Payload(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	payload, err := h.sys.Payload(r.Context(), actor, id, r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// Save writes the request body as the stage artifact and moves the record
// to that stage.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	a, err := h.sys.Save(r.Context(), actor, id, stage, payload)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Submit finishes labelling: the request body is the labelled payload.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Submit)
}

// Accept approves a reviewed annotation: the request body is the final payload.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Accept)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, actor identity.Actor, id uuid.UUID, payload []byte) (*Annotation, error),
) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	a, err := op(r.Context(), actor, id, payload)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Reject sends an annotation back with a reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	a, err := h.sys.Reject(r.Context(), actor, id, req.Reason, req.Payload)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Assign sets or clears the annotation's assignee.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	a, err := h.sys.Assign(r.Context(), actor, id, req.Username)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// SmartAssign distributes unassigned work across a group.
func (h *Handler) SmartAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req SmartAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	assigned, err := h.sys.SmartAssign(r.Context(), actor, status, req.Group, req.Percentage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SmartAssignResult{Assigned: assigned})
}

// Counts returns the workload overview.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	counts, err := h.sys.Counts(r.Context(), actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, counts)
}

// AssignOverview returns group rosters and per-status assignment fractions.
func (h *Handler) AssignOverview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	overview, err := h.sys.AssignOverview(r.Context(), actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, overview)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}

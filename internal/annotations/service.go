package annotations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/formatting"
	"github.com/tally-ai/taggo/pkg/pagination"
	"github.com/tally-ai/taggo/pkg/queue"
	"github.com/tally-ai/taggo/pkg/storage"
)

// Dependencies carries the collaborators the workflow acts through: the
// record store, the blob store and its container mapping, the pre-label
// dispatch sink, and the identity provider. Clock and Sampler default to
// time.Now and a randomly seeded source when nil.
type Dependencies struct {
	Store      Store
	Blobs      storage.System
	Sink       queue.Sink
	Identity   identity.Provider
	Containers storage.Containers
	Clock      Clock
	Sampler    Sampler
}

type service struct {
	store      Store
	blobs      storage.System
	sink       queue.Sink
	idp        identity.Provider
	containers storage.Containers
	audit      auditLog
	sampler    Sampler
	cfg        Config
	logger     *slog.Logger
	pagination pagination.Config
}

// preLabelTask is the message handed to the external pre-labelling worker.
type preLabelTask struct {
	ID        uuid.UUID `json:"id"`
	Container string    `json:"container"`
	Key       string    `json:"key"`
}

// New creates the annotation workflow system.
func New(
	deps Dependencies,
	cfg Config,
	pageCfg pagination.Config,
	logger *slog.Logger,
) System {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	sampler := deps.Sampler
	if sampler == nil {
		sampler = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &service{
		store:      deps.Store,
		blobs:      deps.Blobs,
		sink:       deps.Sink,
		idp:        deps.Identity,
		containers: deps.Containers,
		audit:      newAuditLog(clock, cfg.Location()),
		sampler:    sampler,
		cfg:        cfg,
		logger:     logger.With("system", "annotations"),
		pagination: pageCfg,
	}
}

func (s *service) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxUploadSize)
}

// canAct reports whether the actor may operate on a record: superusers
// always, everyone else only on their current assignment.
func canAct(actor identity.Actor, assignedTo *uuid.UUID) bool {
	if actor.Role.Superuser {
		return true
	}
	return assignedTo != nil && *assignedTo == actor.User.ID
}

func (s *service) List(
	ctx context.Context,
	actor identity.Actor,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[View], error) {
	page.Normalize(s.pagination)

	filters, err := s.resolveFilters(ctx, actor, filters)
	if err != nil {
		return nil, err
	}

	return s.store.List(ctx, page, filters)
}

// resolveFilters turns an assignee username into an id filter and scopes
// non-superusers to their own assignments. An unknown username matches
// nothing rather than erroring.
func (s *service) resolveFilters(ctx context.Context, actor identity.Actor, filters Filters) (Filters, error) {
	if filters.Assignee != nil {
		u, err := s.idp.ResolveUser(ctx, *filters.Assignee)
		if err != nil {
			return filters, err
		}
		if u == nil {
			none := uuid.Nil
			filters.AssignedTo = &none
		} else {
			filters.AssignedTo = &u.ID
		}
		filters.Assignee = nil
	}

	if !actor.Role.Superuser {
		filters.AssignedTo = &actor.User.ID
		filters.Unassigned = false
	}
	return filters, nil
}

func (s *service) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*View, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAct(actor, v.AssignedTo) {
		return nil, ErrForbidden
	}
	return v, nil
}

func (s *service) Neighbor(
	ctx context.Context,
	actor identity.Actor,
	id uuid.UUID,
	filters Filters,
	forward bool,
) (*uuid.UUID, error) {
	filters, err := s.resolveFilters(ctx, actor, filters)
	if err != nil {
		return nil, err
	}
	return s.store.Neighbor(ctx, id, filters, forward)
}

func (s *service) Upload(ctx context.Context, actor identity.Actor, cmd UploadCommand) (*Annotation, error) {
	if !actor.Role.Superuser {
		return nil, ErrForbidden
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidFile)
	}

	ext := strings.ToLower(filepath.Ext(cmd.Filename))
	if ext == "" {
		return nil, fmt.Errorf("%w: filename has no extension", ErrInvalidFile)
	}

	id := uuid.New()
	docKey := id.String() + ext

	if err := s.blobs.Upload(ctx, s.containers.Documents, docKey, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	record := &Annotation{
		ID:           id,
		Status:       StatusUploaded,
		InsertedTime: s.audit.now().UTC(),
		History:      []string{s.audit.uploaded(actor.User.Username)},
		DocKey:       docKey,
		PageCount:    cmd.PageCount,
	}

	created, err := s.store.Create(ctx, record)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, s.containers.Documents, docKey); delErr != nil {
			s.logger.Warn("compensating blob delete failed",
				"container", s.containers.Documents, "key", docKey, "error", delErr)
		}
		return nil, err
	}

	// Pre-label dispatch is fire and forget. A failed enqueue never rolls
	// back the committed upload.
	task := preLabelTask{ID: created.ID, Container: s.containers.Documents, Key: docKey}
	if err := s.sink.Enqueue(ctx, task); err != nil {
		s.logger.Error("pre-label dispatch failed", "id", created.ID, "error", err)
	}

	s.logger.Info("document uploaded",
		"id", created.ID,
		"key", docKey,
		"size", formatting.FormatBytes(int64(len(cmd.Data)), 1),
		"actor", actor.User.Username,
	)
	return created, nil
}

func (s *service) Document(ctx context.Context, actor identity.Actor, id uuid.UUID) (io.ReadCloser, string, error) {
	v, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}

	rc, err := s.blobs.Download(ctx, s.containers.Documents, v.DocKey)
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(v.DocKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return rc, contentType, nil
}

// Payload fetches the stage artifact for a record. The "uploaded" stage is
// a readiness probe: a record still in uploaded has no payload yet and
// yields an empty document; once past uploaded, the record's own status
// selects the artifact.
func (s *service) Payload(ctx context.Context, actor identity.Actor, id uuid.UUID, stage string) ([]byte, error) {
	v, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var resolved Stage
	if stage == string(StatusUploaded) {
		if v.Status == StatusUploaded {
			return []byte("{}"), nil
		}
		resolved = v.Status
	} else {
		resolved, err = ParseStage(stage)
		if err != nil {
			return nil, err
		}
	}

	spec, ok := stageTable[resolved]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, resolved)
	}

	return s.blobs.Fetch(ctx, spec.container(s.containers), payloadKey(id))
}

func (s *service) Save(ctx context.Context, actor identity.Actor, id uuid.UUID, stage Stage, payload []byte) (*Annotation, error) {
	spec, ok := stageTable[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}

	actorName := actor.User.Username
	if stage == StatusPreLabelled {
		actorName = s.cfg.ModelActor
	}

	return s.store.Update(ctx, id, func(a *Annotation) error {
		if !canAct(actor, a.AssignedTo) {
			return ErrForbidden
		}

		key := payloadKey(a.ID)
		if err := s.writeArtifact(ctx, spec, a, key, payload); err != nil {
			return err
		}

		a.Status = stage
		if stage == StatusCompleted && a.CompletedTime == nil {
			now := s.audit.now().UTC()
			a.CompletedTime = &now
		}
		a.History = append(a.History, s.audit.saved(stage, actorName))
		return nil
	})
}

func (s *service) Submit(ctx context.Context, actor identity.Actor, id uuid.UUID, payload []byte) (*Annotation, error) {
	return s.store.Update(ctx, id, func(a *Annotation) error {
		if !canAct(actor, a.AssignedTo) {
			return ErrForbidden
		}
		if a.Status != StatusInLabelling {
			return fmt.Errorf("%w: submit from %q", ErrInvalidTransition, a.Status)
		}

		reviewer, err := s.pickReviewer(ctx, a)
		if err != nil {
			return err
		}

		spec := stageTable[StatusInReview]
		if err := s.writeArtifact(ctx, spec, a, payloadKey(a.ID), payload); err != nil {
			return err
		}

		a.LabelledBy = &actor.User.ID
		if a.LabelledAt == nil {
			now := s.audit.now().UTC()
			a.LabelledAt = &now
		}
		a.Status = StatusInReview
		a.History = append(a.History, s.audit.labelled(actor.User.Username))

		if reviewer != nil {
			a.AssignedTo = &reviewer.ID
			a.History = append(a.History, s.audit.assigned(reviewer.Username))
		} else {
			a.AssignedTo = nil
		}
		return nil
	})
}

func (s *service) Accept(ctx context.Context, actor identity.Actor, id uuid.UUID, payload []byte) (*Annotation, error) {
	if !actor.Role.CanReview() {
		return nil, ErrForbidden
	}

	return s.store.Update(ctx, id, func(a *Annotation) error {
		if !canAct(actor, a.AssignedTo) {
			return ErrForbidden
		}
		if a.Status != StatusInReview {
			return fmt.Errorf("%w: accept from %q", ErrInvalidTransition, a.Status)
		}

		escalateTo, err := s.escalate(ctx)
		if err != nil {
			return err
		}

		spec := stageTable[StatusAccepted]
		if err := s.writeArtifact(ctx, spec, a, payloadKey(a.ID), payload); err != nil {
			return err
		}

		a.ReviewedBy = &actor.User.ID
		if a.ReviewedAt == nil {
			now := s.audit.now().UTC()
			a.ReviewedAt = &now
		}
		a.Status = StatusAccepted
		a.History = append(a.History, s.audit.accepted(actor.User.Username))

		if escalateTo != nil {
			a.AssignedTo = &escalateTo.ID
			a.History = append(a.History, s.audit.assigned(escalateTo.Username))
		} else {
			a.AssignedTo = nil
		}
		return nil
	})
}

func (s *service) Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string, payload []byte) (*Annotation, error) {
	if !actor.Role.CanReview() {
		return nil, ErrForbidden
	}

	return s.store.Update(ctx, id, func(a *Annotation) error {
		if !canAct(actor, a.AssignedTo) {
			return ErrForbidden
		}
		if a.Status != StatusInReview && a.Status != StatusAccepted {
			return fmt.Errorf("%w: reject from %q", ErrInvalidTransition, a.Status)
		}

		var target Status
		switch {
		case a.ReviewedBy != nil:
			target = StatusInReview
		case a.LabelledBy != nil:
			target = StatusInLabelling
		default:
			return ErrCannotReject
		}

		spec := stageTable[target]
		if err := s.writeArtifact(ctx, spec, a, payloadKey(a.ID), payload); err != nil {
			return err
		}

		switch target {
		case StatusInReview:
			a.AssignedTo = a.ReviewedBy
		case StatusInLabelling:
			a.AssignedTo = a.LabelledBy
			a.ReviewedBy = &actor.User.ID
			if a.ReviewedAt == nil {
				now := s.audit.now().UTC()
				a.ReviewedAt = &now
			}
		}

		a.Status = target
		a.History = append(a.History, s.audit.rejected(actor.User.Username, reason))
		return nil
	})
}

func (s *service) Assign(ctx context.Context, actor identity.Actor, id uuid.UUID, username *string) (*Annotation, error) {
	var assignee *identity.User
	if username != nil {
		u, err := s.idp.ResolveUser(ctx, *username)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, identity.ErrUserNotFound
		}
		assignee = u
	}

	return s.store.Update(ctx, id, func(a *Annotation) error {
		if !canAct(actor, a.AssignedTo) {
			return ErrForbidden
		}

		if assignee == nil {
			a.AssignedTo = nil
			a.History = append(a.History, s.audit.unassigned(actor.User.Username))
			return nil
		}

		a.AssignedTo = &assignee.ID
		a.History = append(a.History, s.audit.assignedBy(assignee.Username, actor.User.Username))
		return nil
	})
}

func (s *service) SmartAssign(
	ctx context.Context,
	actor identity.Actor,
	status Status,
	group string,
	percentage int,
) (int, error) {
	if !actor.Role.Superuser {
		return 0, ErrForbidden
	}
	if percentage < 0 || percentage > 100 {
		return 0, ErrInvalidPercentage
	}

	members, err := s.idp.MembersOfGroup(ctx, group)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, ErrNoEligibleUsers
	}

	ids, err := s.store.Unassigned(ctx, status)
	if err != nil {
		return 0, err
	}

	count := smartAssignCount(len(ids), percentage)
	assigned := 0

	for i := range count {
		member := members[i%len(members)]

		_, err := s.store.Update(ctx, ids[i], func(a *Annotation) error {
			a.AssignedTo = &member.ID
			a.Status = StatusInLabelling
			a.History = append(a.History, s.audit.smartAssigned(member.Username, actor.User.Username))
			return nil
		})
		if err != nil {
			return assigned, fmt.Errorf("smart assign %s: %w", ids[i], err)
		}
		assigned++
	}

	s.logger.Info("smart assign complete",
		"status", status, "group", group, "percentage", percentage, "assigned", assigned)
	return assigned, nil
}

func (s *service) Counts(ctx context.Context, _ identity.Actor) (*CountsView, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	view := &CountsView{InProgress: make(map[Status]int)}
	for _, status := range Statuses() {
		if status.InProgress() {
			view.InProgress[status] = 0
		}
	}

	for _, c := range counts {
		view.Total += c.Total
		if c.Status.InProgress() {
			view.InProgress[c.Status] = c.Total
		} else {
			view.Completed = c.Total
		}
	}
	return view, nil
}

func (s *service) AssignOverview(ctx context.Context, actor identity.Actor) (*AssignOverview, error) {
	if !actor.Role.Superuser {
		return nil, ErrForbidden
	}

	groups, err := s.idp.Groups(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	overview := &AssignOverview{
		Groups: groups,
		Status: make(map[Status]string),
	}
	for _, status := range Statuses() {
		overview.Status[status] = "0/0"
	}
	for _, c := range counts {
		overview.Status[c.Status] = fmt.Sprintf("%d/%d", c.Unassigned, c.Total)
	}
	return overview, nil
}

// writeArtifact stores a stage payload and records the blob key on the
// stage's tracked key field.
func (s *service) writeArtifact(ctx context.Context, spec stageSpec, a *Annotation, key string, payload []byte) error {
	container := spec.container(s.containers)
	if err := s.blobs.Upload(ctx, container, key, bytes.NewReader(payload), "application/json"); err != nil {
		return err
	}

	switch spec.artifact {
	case artifactPreLabel:
		a.PreLabelKey = &key
	case artifactLabel:
		a.LabelKey = &key
	}
	return nil
}

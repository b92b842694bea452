package annotations

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/pagination"
)

// System defines the public contract for annotation workflow operations.
// Every method takes the acting user; authorization gates run before any
// transition. Mutations update the stage artifact and the record as one
// logical unit.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		actor identity.Actor,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[View], error)

	Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*View, error)
	Neighbor(ctx context.Context, actor identity.Actor, id uuid.UUID, filters Filters, forward bool) (*uuid.UUID, error)

	Upload(ctx context.Context, actor identity.Actor, cmd UploadCommand) (*Annotation, error)
	Document(ctx context.Context, actor identity.Actor, id uuid.UUID) (io.ReadCloser, string, error)
	Payload(ctx context.Context, actor identity.Actor, id uuid.UUID, stage string) ([]byte, error)

	Save(ctx context.Context, actor identity.Actor, id uuid.UUID, stage Stage, payload []byte) (*Annotation, error)
	Submit(ctx context.Context, actor identity.Actor, id uuid.UUID, payload []byte) (*Annotation, error)
	Accept(ctx context.Context, actor identity.Actor, id uuid.UUID, payload []byte) (*Annotation, error)
	Reject(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string, payload []byte) (*Annotation, error)

	Assign(ctx context.Context, actor identity.Actor, id uuid.UUID, username *string) (*Annotation, error)
	SmartAssign(ctx context.Context, actor identity.Actor, status Status, group string, percentage int) (int, error)

	Counts(ctx context.Context, actor identity.Actor) (*CountsView, error)
	AssignOverview(ctx context.Context, actor identity.Actor) (*AssignOverview, error)
}

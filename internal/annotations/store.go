package annotations

import (
	"context"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/pkg/pagination"
)

// Store defines annotation record persistence. Update runs its mutator
// against a row locked for the duration of the transaction, so concurrent
// workflow actions on the same record serialize rather than interleave.
type Store interface {
	Create(ctx context.Context, a *Annotation) (*Annotation, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*Annotation) error) (*Annotation, error)
	Delete(ctx context.Context, id uuid.UUID) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[View], error)

	// Neighbor returns the id adjacent to anchor in the filtered listing
	// order, or nil at the listing's edge. Forward walks toward older
	// records, matching the default newest-first listing.
	Neighbor(ctx context.Context, anchor uuid.UUID, filters Filters, forward bool) (*uuid.UUID, error)

	// Unassigned returns unassigned record ids for a status, newest first,
	// matching the default listing order.
	Unassigned(ctx context.Context, status Status) ([]uuid.UUID, error)

	StatusCounts(ctx context.Context) ([]StatusCount, error)
}

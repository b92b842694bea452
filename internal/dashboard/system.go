package dashboard

import (
	"context"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/pagination"
)

// System defines the public contract for activity reporting. Users see
// their own activity; superusers see anyone's.
type System interface {
	Handler() *Handler

	Activity(
		ctx context.Context,
		actor identity.Actor,
		username string,
		window Range,
		page pagination.PageRequest,
	) (*Activity, error)
}

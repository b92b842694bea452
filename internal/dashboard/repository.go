package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tally-ai/taggo/internal/identity"
	"github.com/tally-ai/taggo/pkg/pagination"
	"github.com/tally-ai/taggo/pkg/query"
	"github.com/tally-ai/taggo/pkg/repository"
)

type repo struct {
	db         *sql.DB
	idp        identity.Provider
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a dashboard repository implementing the System interface.
func New(
	db *sql.DB,
	idp identity.Provider,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		idp:        idp,
		logger:     logger.With("system", "dashboard"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

// Activity runs the labelled and reviewed queries concurrently; both share
// the window and page request but paginate independently.
func (r *repo) Activity(
	ctx context.Context,
	actor identity.Actor,
	username string,
	window Range,
	page pagination.PageRequest,
) (*Activity, error) {
	if !actor.Role.Superuser && actor.User.Username != username {
		return nil, identity.ErrForbidden
	}

	user, err := r.idp.ResolveUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, identity.ErrUserNotFound
	}

	page.Normalize(r.pagination)

	var activity Activity
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := r.report(gctx, labelledByColumn, "LabelledAt", user.ID, window, page)
		if err != nil {
			return fmt.Errorf("labelled report: %w", err)
		}
		activity.Labelled = result
		return nil
	})

	g.Go(func() error {
		result, err := r.report(gctx, reviewedByColumn, "ReviewedAt", user.ID, window, page)
		if err != nil {
			return fmt.Errorf("reviewed report: %w", err)
		}
		activity.Reviewed = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *repo) report(
	ctx context.Context,
	userColumn, timeField string,
	userID uuid.UUID,
	window Range,
	page pagination.PageRequest,
) (*pagination.PageResult[Row], error) {
	qb := query.
		NewBuilder(projection, query.SortField{Field: timeField, Descending: true}).
		WhereEquals(userColumn, userID).
		WhereNotNull(timeField).
		WhereBetween(timeField, window.From, window.To)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryValue[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, err
	}

	page.ClampToTotal(total)

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rows, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRow)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(rows, total, page.Page, page.PageSize)
	return &result, nil
}

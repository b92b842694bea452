package annotations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/pkg/pagination"
	"github.com/tally-ai/taggo/pkg/query"
	"github.com/tally-ai/taggo/pkg/repository"
)

const recordColumns = `id, status, assigned_to, labelled_by, reviewed_by,
		labelled_at, reviewed_at, inserted_time, completed_time, history,
		doc_key, pre_label_key, label_key, page_count`

type store struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed annotation store.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, a *Annotation) (*Annotation, error) {
	history, err := json.Marshal(a.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO annotations(id, status, inserted_time, history, doc_key, page_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, recordColumns)

	args := []any{a.ID, a.Status, a.InsertedTime, history, a.DocKey, a.PageCount}

	created, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Annotation, error) {
		return repository.QueryOne(ctx, tx, q, args, scanAnnotation)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &created, nil
}

func (s *store) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	v, err := repository.QueryOne(ctx, s.db, q, args, scanView)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &v, nil
}

// Update locks the record, applies mutate, and writes the result back in
// the same transaction. An error from mutate rolls back with the record
// untouched.
func (s *store) Update(ctx context.Context, id uuid.UUID, mutate func(*Annotation) error) (*Annotation, error) {
	selectQ := fmt.Sprintf(
		"SELECT %s FROM annotations WHERE id = $1 FOR UPDATE", recordColumns)

	updateQ := `
		UPDATE annotations
		SET status = $2, assigned_to = $3, labelled_by = $4, reviewed_by = $5,
			labelled_at = $6, reviewed_at = $7, completed_time = $8,
			history = $9, pre_label_key = $10, label_key = $11
		WHERE id = $1`

	updated, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Annotation, error) {
		a, err := repository.QueryOne(ctx, tx, selectQ, []any{id}, scanAnnotation)
		if err != nil {
			return a, err
		}

		if err := mutate(&a); err != nil {
			return a, err
		}

		history, err := json.Marshal(a.History)
		if err != nil {
			return a, fmt.Errorf("encode history: %w", err)
		}

		err = repository.ExecExpectOne(ctx, tx, updateQ,
			a.ID, a.Status, a.AssignedTo, a.LabelledBy, a.ReviewedBy,
			a.LabelledAt, a.ReviewedAt, a.CompletedTime,
			history, a.PreLabelKey, a.LabelKey,
		)
		return a, err
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &updated, nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db,
		"DELETE FROM annotations WHERE id = $1", id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[View], error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryValue[int](ctx, s.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count annotations: %w", err)
	}

	page.ClampToTotal(total)

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	views, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanView)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}

	result := pagination.NewPageResult(views, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) Neighbor(
	ctx context.Context,
	anchor uuid.UUID,
	filters Filters,
	forward bool,
) (*uuid.UUID, error) {
	anchorTime, err := repository.QueryValue[time.Time](ctx, s.db,
		"SELECT inserted_time FROM annotations WHERE id = $1", anchor)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// The listing sorts newest first, so forward means strictly older.
	op, dir := "<", true
	if !forward {
		op, dir = ">", false
	}

	qb := query.NewBuilder(projection, query.SortField{
		Field:      "InsertedTime",
		Descending: dir,
	})
	filters.Apply(qb)
	qb.WhereCompare("InsertedTime", op, anchorTime)

	q, args := qb.BuildSingleOrNull()

	v, err := repository.QueryOne(ctx, s.db, q, args, scanView)
	if err != nil {
		if repository.MapError(err, ErrNotFound, ErrDuplicate) == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &v.ID, nil
}

func (s *store) Unassigned(ctx context.Context, status Status) ([]uuid.UUID, error) {
	q := `
		SELECT id FROM annotations
		WHERE status = $1 AND assigned_to IS NULL
		ORDER BY inserted_time DESC`

	return repository.QueryMany(ctx, s.db, q, []any{status},
		func(sc repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := sc.Scan(&id)
			return id, err
		})
}

func (s *store) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	q := `
		SELECT status, COUNT(*), COUNT(*) FILTER (WHERE assigned_to IS NULL)
		FROM annotations
		GROUP BY status`

	counts, err := repository.QueryMany(ctx, s.db, q, nil,
		func(sc repository.Scanner) (StatusCount, error) {
			var c StatusCount
			err := sc.Scan(&c.Status, &c.Total, &c.Unassigned)
			return c, err
		})
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	return counts, nil
}

func scanAnnotation(sc repository.Scanner) (Annotation, error) {
	var (
		a       Annotation
		history []byte
	)

	err := sc.Scan(
		&a.ID,
		&a.Status,
		&a.AssignedTo,
		&a.LabelledBy,
		&a.ReviewedBy,
		&a.LabelledAt,
		&a.ReviewedAt,
		&a.InsertedTime,
		&a.CompletedTime,
		&history,
		&a.DocKey,
		&a.PreLabelKey,
		&a.LabelKey,
		&a.PageCount,
	)
	if err != nil {
		return a, err
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &a.History); err != nil {
			return a, err
		}
	}

	return a, nil
}

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/pkg/repository"
)

type directory struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDirectory creates a Provider backed by the PostgreSQL user directory.
func NewDirectory(db *sql.DB, logger *slog.Logger) Provider {
	return &directory{
		db:     db,
		logger: logger.With("system", "identity"),
	}
}

const userColumns = "u.id, u.username, u.email, u.is_superuser"

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Superuser)
	return u, err
}

func (d *directory) ResolveUser(ctx context.Context, username string) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM public.users u WHERE u.username = $1", userColumns)
	return d.resolve(ctx, q, username)
}

func (d *directory) ResolveID(ctx context.Context, id uuid.UUID) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM public.users u WHERE u.id = $1", userColumns)
	return d.resolve(ctx, q, id)
}

func (d *directory) resolve(ctx context.Context, q string, arg any) (*User, error) {
	u, err := repository.QueryOne(ctx, d.db, q, []any{arg}, scanUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return &u, nil
}

func (d *directory) MembersOfGroup(ctx context.Context, name string) ([]User, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM public.users u
		JOIN public.memberships m ON m.user_id = u.id
		JOIN public.groups g ON g.id = m.group_id
		WHERE g.name = $1
		ORDER BY u.username`, userColumns)

	users, err := repository.QueryMany(ctx, d.db, q, []any{name}, scanUser)
	if err != nil {
		return nil, fmt.Errorf("group members %s: %w", name, err)
	}
	return users, nil
}

func (d *directory) IsMember(ctx context.Context, userID uuid.UUID, group string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT 1 FROM public.memberships m
			JOIN public.groups g ON g.id = m.group_id
			WHERE m.user_id = $1 AND g.name = $2
		)`

	member, err := repository.QueryValue[bool](ctx, d.db, q, userID, group)
	if err != nil {
		return false, fmt.Errorf("membership check: %w", err)
	}
	return member, nil
}

func (d *directory) Superusers(ctx context.Context) ([]User, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM public.users u WHERE u.is_superuser ORDER BY u.username",
		userColumns,
	)

	users, err := repository.QueryMany(ctx, d.db, q, nil, scanUser)
	if err != nil {
		return nil, fmt.Errorf("superusers: %w", err)
	}
	return users, nil
}

func (d *directory) Users(ctx context.Context) ([]User, error) {
	q := fmt.Sprintf("SELECT %s FROM public.users u ORDER BY u.username", userColumns)

	users, err := repository.QueryMany(ctx, d.db, q, nil, scanUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (d *directory) Groups(ctx context.Context) (map[string][]string, error) {
	q := `
		SELECT g.name, u.username FROM public.groups g
		JOIN public.memberships m ON m.group_id = g.id
		JOIN public.users u ON u.id = m.user_id
		ORDER BY g.name, u.username`

	type row struct {
		group    string
		username string
	}

	rows, err := repository.QueryMany(ctx, d.db, q, nil, func(s repository.Scanner) (row, error) {
		var r row
		err := s.Scan(&r.group, &r.username)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("group rosters: %w", err)
	}

	rosters := make(map[string][]string)
	for _, r := range rows {
		rosters[r.group] = append(rosters[r.group], r.username)
	}
	return rosters, nil
}

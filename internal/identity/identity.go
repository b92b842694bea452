// Package identity implements the identity provider collaborator: user and
// group resolution, role capabilities, and request authentication. User and
// group records live in a directory kept in sync by the external auth system;
// this package only reads them.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// User is a directory entry. References to users elsewhere in the system are
// weak: a deleted user resolves to nil rather than an error.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Superuser bool      `json:"superuser"`
}

// Role is the capability set of an acting user, resolved once per request.
type Role struct {
	Superuser bool `json:"superuser"`
	Reviewer  bool `json:"reviewer"`
}

// CanReview reports whether the role may accept or reject annotations.
func (r Role) CanReview() bool {
	return r.Superuser || r.Reviewer
}

// Provider defines the identity provider contract consumed by the workflow.
type Provider interface {
	// ResolveUser returns the user with the given username, or nil if absent.
	ResolveUser(ctx context.Context, username string) (*User, error)
	// ResolveID returns the user with the given id, or nil if absent.
	ResolveID(ctx context.Context, id uuid.UUID) (*User, error)
	// MembersOfGroup returns the members of the named group in a stable order.
	MembersOfGroup(ctx context.Context, name string) ([]User, error)
	// IsMember reports whether the user belongs to the named group.
	IsMember(ctx context.Context, userID uuid.UUID, group string) (bool, error)
	// Superusers returns all superusers in a stable order.
	Superusers(ctx context.Context) ([]User, error)
	// Users returns every directory user in a stable order.
	Users(ctx context.Context) ([]User, error)
	// Groups returns every group roster keyed by group name.
	Groups(ctx context.Context) (map[string][]string, error)
}

// ResolveRole computes the acting user's capabilities against the configured
// reviewers group.
func ResolveRole(ctx context.Context, p Provider, user User, reviewersGroup string) (Role, error) {
	role := Role{Superuser: user.Superuser}
	if role.Superuser {
		return role, nil
	}

	reviewer, err := p.IsMember(ctx, user.ID, reviewersGroup)
	if err != nil {
		return Role{}, err
	}
	role.Reviewer = reviewer
	return role, nil
}

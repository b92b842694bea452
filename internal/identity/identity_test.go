package identity_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/tally-ai/taggo/internal/identity"
)

type staticProvider struct {
	members map[string][]uuid.UUID
}

func (p *staticProvider) ResolveUser(context.Context, string) (*identity.User, error) {
	return nil, nil
}

func (p *staticProvider) ResolveID(context.Context, uuid.UUID) (*identity.User, error) {
	return nil, nil
}

func (p *staticProvider) MembersOfGroup(context.Context, string) ([]identity.User, error) {
	return nil, nil
}

func (p *staticProvider) IsMember(_ context.Context, userID uuid.UUID, group string) (bool, error) {
	for _, id := range p.members[group] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (p *staticProvider) Superusers(context.Context) ([]identity.User, error) { return nil, nil }
func (p *staticProvider) Users(context.Context) ([]identity.User, error)      { return nil, nil }
func (p *staticProvider) Groups(context.Context) (map[string][]string, error) {
	return map[string][]string{}, nil
}

func TestResolveRole(t *testing.T) {
	reviewer := identity.User{ID: uuid.New(), Username: "carol"}
	plain := identity.User{ID: uuid.New(), Username: "alice"}
	super := identity.User{ID: uuid.New(), Username: "root", Superuser: true}

	provider := &staticProvider{
		members: map[string][]uuid.UUID{"reviewers": {reviewer.ID}},
	}

	tests := []struct {
		name       string
		user       identity.User
		wantSuper  bool
		wantReview bool
	}{
		{"superuser", super, true, true},
		{"reviewer", reviewer, false, true},
		{"plain user", plain, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := identity.ResolveRole(context.Background(), provider, tt.user, "reviewers")
			if err != nil {
				t.Fatalf("resolve role: %v", err)
			}

			if role.Superuser != tt.wantSuper {
				t.Errorf("Superuser = %v, want %v", role.Superuser, tt.wantSuper)
			}
			if role.CanReview() != tt.wantReview {
				t.Errorf("CanReview() = %v, want %v", role.CanReview(), tt.wantReview)
			}
		})
	}
}

func TestActorContextRoundTrip(t *testing.T) {
	actor := identity.Actor{
		User: identity.User{ID: uuid.New(), Username: "alice"},
		Role: identity.Role{Reviewer: true},
	}

	ctx := identity.WithActor(context.Background(), actor)

	got, ok := identity.ActorFrom(ctx)
	if !ok {
		t.Fatal("actor missing from context")
	}
	if got.User.Username != "alice" || !got.Role.Reviewer {
		t.Errorf("actor = %+v", got)
	}

	if _, ok := identity.ActorFrom(context.Background()); ok {
		t.Error("bare context should carry no actor")
	}
}

func TestHandlerDirectoryGating(t *testing.T) {
	provider := &staticProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := identity.NewHandler(provider, logger)

	super := identity.Actor{
		User: identity.User{ID: uuid.New(), Username: "root", Superuser: true},
		Role: identity.Role{Superuser: true},
	}
	labeller := identity.Actor{
		User: identity.User{ID: uuid.New(), Username: "alice"},
	}

	endpoints := []struct {
		name  string
		serve http.HandlerFunc
	}{
		{"users", handler.List},
		{"groups", handler.Groups},
	}

	tests := []struct {
		name  string
		actor *identity.Actor
		want  int
	}{
		{"superuser", &super, http.StatusOK},
		{"non-superuser", &labeller, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, ep := range endpoints {
		for _, tt := range tests {
			t.Run(ep.name+"/"+tt.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/users", nil)
				if tt.actor != nil {
					req = req.WithContext(identity.WithActor(req.Context(), *tt.actor))
				}

				rec := httptest.NewRecorder()
				ep.serve(rec, req)

				if rec.Code != tt.want {
					t.Errorf("status = %d, want %d", rec.Code, tt.want)
				}
			})
		}
	}
}

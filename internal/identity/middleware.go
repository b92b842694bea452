package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/tally-ai/taggo/pkg/handlers"
)

type contextKey int

const actorKey contextKey = iota

// Actor bundles the authenticated user with their resolved capabilities.
type Actor struct {
	User User
	Role Role
}

// ActorFrom extracts the authenticated actor from a request context.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// WithActor returns a context carrying the given actor. Exposed for tests
// and for internal dispatch on behalf of a resolved user.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Authenticator resolves the acting user for each request, either from a
// verified OIDC bearer token or, when no issuer is configured, from a
// trusted proxy header.
type Authenticator struct {
	verifier       *oidc.IDTokenVerifier
	provider       Provider
	usernameClaim  string
	trustedHeader  string
	reviewersGroup string
	logger         *slog.Logger
}

// NewAuthenticator creates an Authenticator from configuration. When an
// issuer is configured, OIDC discovery runs against it; otherwise requests
// authenticate via the configured trusted header.
func NewAuthenticator(
	ctx context.Context,
	cfg *Config,
	provider Provider,
	logger *slog.Logger,
) (*Authenticator, error) {
	a := &Authenticator{
		provider:       provider,
		usernameClaim:  cfg.UsernameClaim,
		trustedHeader:  cfg.TrustedHeader,
		reviewersGroup: cfg.ReviewersGroup,
		logger:         logger.With("system", "auth"),
	}

	if cfg.Issuer != "" {
		oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("oidc discovery %s: %w", cfg.Issuer, err)
		}
		a.verifier = oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	return a, nil
}

// Middleware authenticates the request and stores the actor in its context.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := a.username(r)
			if err != nil {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}

			user, err := a.provider.ResolveUser(r.Context(), username)
			if err != nil {
				handlers.RespondError(w, a.logger, http.StatusInternalServerError, err)
				return
			}
			if user == nil {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrUnauthenticated)
				return
			}

			role, err := ResolveRole(r.Context(), a.provider, *user, a.reviewersGroup)
			if err != nil {
				handlers.RespondError(w, a.logger, http.StatusInternalServerError, err)
				return
			}

			ctx := WithActor(r.Context(), Actor{User: *user, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (a *Authenticator) username(r *http.Request) (string, error) {
	if a.verifier != nil {
		raw, ok := bearerToken(r)
		if !ok {
			return "", ErrUnauthenticated
		}

		token, err := a.verifier.Verify(r.Context(), raw)
		if err != nil {
			return "", fmt.Errorf("verify token: %w", err)
		}

		var claims map[string]any
		if err := token.Claims(&claims); err != nil {
			return "", fmt.Errorf("decode claims: %w", err)
		}

		username, _ := claims[a.usernameClaim].(string)
		if username == "" {
			return "", ErrUnauthenticated
		}
		return username, nil
	}

	if a.trustedHeader != "" {
		if username := r.Header.Get(a.trustedHeader); username != "" {
			return username, nil
		}
	}

	return "", ErrUnauthenticated
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

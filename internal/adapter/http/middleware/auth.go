package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/auth"
	"github.com/iho/coopledger/internal/infrastructure/logger"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

const (
	// ActorHeader names the acting user when authentication is disabled.
	ActorHeader = "X-Actor"
	// ActorRoleHeader optionally carries the role for ActorHeader.
	ActorRoleHeader = "X-Actor-Role"
)

// Authenticator resolves the acting user of every API request.
type Authenticator struct {
	jwtManager *auth.JWTManager
	enabled    bool
	metrics    *metrics.Metrics
}

// NewAuthenticator creates an Authenticator. With enabled false the actor is
// taken from the X-Actor headers and defaults to domain.SystemActor.
func NewAuthenticator(jwtManager *auth.JWTManager, enabled bool, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		jwtManager: jwtManager,
		enabled:    enabled,
		metrics:    m,
	}
}

// Authenticate puts the request's domain.Actor on the context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var actor domain.Actor
		if a.enabled {
			var ok bool
			actor, ok = a.verify(w, r)
			if !ok {
				return
			}
		} else {
			actor = headerActor(r)
		}

		ctx := domain.ContextWithActor(r.Context(), actor)
		ctx = logger.WithRequest(ctx, *zerolog.Ctx(ctx), "", actor.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) verify(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		a.fail(w, "missing_header", "missing authorization header")
		return domain.Actor{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		a.fail(w, "bad_format", "invalid authorization header format")
		return domain.Actor{}, false
	}

	claims, err := a.jwtManager.Verify(parts[1])
	if err != nil {
		a.fail(w, "invalid_token", "invalid or expired token")
		return domain.Actor{}, false
	}

	return claims.Actor(), true
}

func (a *Authenticator) fail(w http.ResponseWriter, reason, message string) {
	if a.metrics != nil {
		a.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", message)
}

func headerActor(r *http.Request) domain.Actor {
	id := strings.TrimSpace(r.Header.Get(ActorHeader))
	if id == "" {
		return domain.SystemActor
	}

	role := domain.Role(r.Header.Get(ActorRoleHeader))
	if !role.IsValid() {
		role = domain.RoleAdmin
	}
	return domain.Actor{ID: id, Role: role}
}

// RequireRole rejects requests whose actor fails allowed. Mutations are
// authorized again inside the usecases; this guards the read-only views.
func RequireRole(allowed func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := domain.ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "no actor on request")
				return
			}
			if !allowed(actor.Role) {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cashlytics/ledger-engine/ledger"
)

// =============================================================================
// AUTHENTICATION MIDDLEWARE
// =============================================================================

type contextKey string

const principalKey contextKey = "principal"

// RequireAuth extracts the bearer credential, resolves it to a principal once
// per request, and stores the principal in the request context. The resolver
// is the external identity collaborator; the API never interprets credential
// internals.
func RequireAuth(resolver ledger.PrincipalResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := bearerCredential(r)

			principal, err := resolver.Resolve(r.Context(), cred)
			if err != nil {
				log.Debug("credential rejected", zap.String("path", r.URL.Path))
				writeError(w, http.StatusUnauthorized, "Invalid or missing credentials", nil)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerCredential(r *http.Request) ledger.Credential {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return ledger.Credential(strings.TrimSpace(header[len(prefix):]))
}

// principalFrom returns the authenticated principal stored by RequireAuth.
func principalFrom(ctx context.Context) (ledger.PrincipalID, bool) {
	p, ok := ctx.Value(principalKey).(ledger.PrincipalID)
	return p, ok
}

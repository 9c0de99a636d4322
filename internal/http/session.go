package httpapi

import (
	"context"
	"net/http"

	"tilp-connect/internal/domain"
	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

type identityKey struct{}

// RequireSession resolves the bearer token into an identity and stores it on
// the request context. Requests without a live session get 401.
func RequireSession(auth service.AuthService, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := auth.Resolve(r.Context(), bearerToken(r))
		if err != nil {
			writeError(w, logger, "Resolve session", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, identity)))
	})
}

// identityFrom returns the identity placed by RequireSession.
func identityFrom(r *http.Request) domain.Identity {
	identity, _ := r.Context().Value(identityKey{}).(domain.Identity)
	return identity
}

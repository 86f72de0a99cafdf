package transport

import (
	"context"
	"net/http"
	"strings"
)

type ownerKey struct{}

// OwnerResolver resolves an owner ID from a bearer API key.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, key string) (string, error)
}

// OwnerFromContext returns the owner ID from context, if present.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok
}

// AuthMiddleware enforces bearer API key authentication on the owner API.
func AuthMiddleware(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			key := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if key == "" {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			ownerID, err := resolver.ResolveOwner(r.Context(), key)
			if err != nil || ownerID == "" {
				respondError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

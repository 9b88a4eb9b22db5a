package middleware

import (
	"context"
	"net/http"
	"strings"

	"healthrecord-api/internal/auth"
)

type ctxKey string

const ownerIDKey ctxKey = "uid"

// OwnerID returns the authenticated user id injected by Auth. It panics if
// the middleware did not run, which would be a routing bug.
func OwnerID(ctx context.Context) string {
	return ctx.Value(ownerIDKey).(string)
}

// WithOwnerID is used by tests to build pre-authenticated contexts.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// Auth validates the bearer token and threads the owner id through the
// request context. Every core call downstream is explicitly scoped by this
// value; there is no ambient session state.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// token from Authorization: Bearer <jwt>
			raw := ""
			if v := r.Header.Get("Authorization"); v != "" {
				raw = strings.TrimPrefix(v, "Bearer ")
			}
			if raw == "" {
				unauthorized(w, "no token")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				unauthorized(w, "bad token")
				return
			}

			ctx := WithOwnerID(r.Context(), claims.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized","code":401,"message":"` + msg + `"}`))
}

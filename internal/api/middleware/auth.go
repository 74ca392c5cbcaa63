package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/api"
)

type contextKey string

const credentialKey contextKey = "backend_credential"

// Credential extracts the caller's backend credential from the
// Authorization header. The key is forwarded verbatim to the embedding and
// generation backends; it is never validated, stored or logged here.
// fallbackKey (the server-configured key) applies when the header is
// absent; requests with neither are rejected.
func Credential(fallbackKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := fallbackKey

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				if !strings.HasPrefix(authHeader, "Bearer ") {
					api.Error(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
				apiKey = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if apiKey == "" {
				api.Error(w, http.StatusUnauthorized, "missing backend credential")
				return
			}

			ctx := context.WithValue(r.Context(), credentialKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCredential returns the per-request backend credential from context.
func GetCredential(ctx context.Context) string {
	apiKey, _ := ctx.Value(credentialKey).(string)
	return apiKey
}

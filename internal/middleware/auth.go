package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// NewBearerAuth returns a middleware that requires a static bearer token on
// every request. The comparison is constant-time so the token cannot be
// probed byte by byte. Mount it on the routes that need protection; the
// health endpoint stays outside it.
func NewBearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing or invalid bearer token"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

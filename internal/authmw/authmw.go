// Package authmw guards the chat API with a shared token. Callers
// present the token either as an Authorization bearer header or as an
// X-API-Key header; browser frontends tend to use the latter.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const apiKeyHeader = "X-API-Key"

// RequireToken returns middleware that rejects requests without the
// expected token. Comparison is constant-time so response timing leaks
// nothing about the token.
func RequireToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := presentedToken(r)
			if !ok {
				unauthorized(w, `{"error":"authentication required"}`)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				unauthorized(w, `{"error":"invalid token"}`)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// presentedToken extracts the client's token from the request. The
// Authorization header wins when both are set.
func presentedToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, "Bearer ") {
			return "", false
		}
		return auth[len("Bearer "):], true
	}
	if key := r.Header.Get(apiKeyHeader); key != "" {
		return key, true
	}
	return "", false
}

func unauthorized(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(body))
}

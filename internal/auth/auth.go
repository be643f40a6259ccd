// Package auth guards the admin endpoints with a static bearer token.
// Everything else the server exposes is public read-only data, so the
// middleware checks only the protected prefixes and passes the rest
// through untouched.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// Config holds authentication configuration. An empty Token disables the
// protected endpoints entirely rather than leaving them open.
type Config struct {
	Token string
}

// protectedPrefixes are path prefixes that require a bearer token.
var protectedPrefixes = []string{
	"/api/v1/admin/",
}

func isProtected(path string) bool {
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware enforces bearer token auth on the protected paths. A missing
// or malformed Authorization header gets 401; a present but wrong token
// gets 403; with no token configured the protected paths answer 403 for
// every caller.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtected(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.Token == "" {
				deny(w, http.StatusForbidden, "admin endpoints disabled")
				return
			}

			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				w.Header().Set("WWW-Authenticate", "Bearer")
				deny(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				deny(w, http.StatusForbidden, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

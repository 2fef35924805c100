package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
)

// AuthConfig is shared by pointer with the server so a SIGHUP reload takes
// effect without rebuilding the middleware chain.
type AuthConfig struct {
	Enabled  bool
	User     string
	Password string
}

// Auth enforces HTTP basic auth when enabled. Paths listed in exclude stay
// open (health checks).
func Auth(cfg *AuthConfig, exclude ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || slices.Contains(exclude, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, password, ok := r.BasicAuth()
			if !ok || !credentialsMatch(cfg, user, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="restricted"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(cfg *AuthConfig, user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
	return userOK && passOK
}

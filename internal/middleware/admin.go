package middleware

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/transport"
)

// AdminAuth admits requests carrying the admin API key or a valid admin
// session cookie.
func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if adminKey != "" {
				provided := r.Header.Get("X-Admin-Key")
				if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			if _, ok := auth.SessionFromRequest(r, manager); ok {
				next.ServeHTTP(w, r)
				return
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

// AdminPages redirects browsers without a session to the login page,
// remembering where they were headed.
func AdminPages(loginPath string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == loginPath || strings.HasPrefix(path, loginPath+"/") || isAsset(path) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := auth.SessionFromRequest(r, manager); ok {
				next.ServeHTTP(w, r)
				return
			}
			target := loginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

func isAsset(path string) bool {
	for _, prefix := range []string{"/admin/assets/", "/admin/_next/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

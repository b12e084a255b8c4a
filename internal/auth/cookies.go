package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "portfolio_access"
	RefreshCookie = "portfolio_refresh"

	// The refresh cookie is only sent to the API.
	refreshCookiePath = "/api"
)

func SetSessionCookies(w http.ResponseWriter, m *Manager, access, refresh string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.AccessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     refreshCookiePath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.RefreshTTL.Seconds()),
	})
}

func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for _, c := range []struct{ name, path string }{
		{AccessCookie, "/"},
		{RefreshCookie, refreshCookiePath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}

// SessionFromRequest returns the claims of a valid access cookie.
func SessionFromRequest(r *http.Request, m *Manager) (*Claims, bool) {
	if m == nil {
		return nil, false
	}
	cookie, err := r.Cookie(AccessCookie)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := m.ParseAccess(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the auth session cookie.
const CookieName = "gateway_session"

// isHTTPS reports whether the request arrived over TLS, directly or via a
// forwarding front-end.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto"))
	return proto == "https"
}

// SessionCookie builds the Set-Cookie value carrying a session token.
// HTTP-only and SameSite=Strict always; Secure when served over HTTPS.
func SessionCookie(r *http.Request, sess Session) *http.Cookie {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   isHTTPS(r),
	}
}

// ClearCookie builds the Set-Cookie value that removes the session cookie.
func ClearCookie(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   isHTTPS(r),
	}
}

// RequestToken extracts the session token from a request, or "".
func RequestToken(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

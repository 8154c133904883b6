package common

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookie names used by the portal
const (
	SessionCookieName      = "session"
	ActiveTenantCookieName = "active-tenant"
)

const rememberMaxAge = 30 * 24 * time.Hour

// CookieState classifies what the session cookie held. Malformed is
// distinguished from absent so callers can log it, but both mean "no session".
type CookieState int

const (
	StateNoSession CookieState = iota
	StateSession
	StateMalformed
)

// CookieResult is the typed outcome of reading the session cookie.
type CookieResult struct {
	State CookieState
	Token string
}

// WriteSessionCookie stores the session token as an HTTP-only, same-site
// strict cookie. With remember set the cookie persists 30 days, otherwise it
// lives for the browser session. Tokens that do not have the expected
// three-segment shape are rejected before anything is written.
func WriteSessionCookie(c echo.Context, token string, remember bool) error {
	if !wellFormedToken(token) {
		return fmt.Errorf("session token is malformed")
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if remember {
		cookie.MaxAge = int(rememberMaxAge.Seconds())
	}
	c.SetCookie(cookie)
	return nil
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// ReadSessionCookie extracts the session token from the incoming request.
// An absent or malformed cookie is not an error; it is simply no session.
func ReadSessionCookie(r *http.Request) CookieResult {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return CookieResult{State: StateNoSession}
	}
	if !wellFormedToken(cookie.Value) {
		return CookieResult{State: StateMalformed}
	}
	return CookieResult{State: StateSession, Token: cookie.Value}
}

// WriteActiveTenantCookie remembers the last-confirmed tenant slug so
// navigation defaults to that tenant.
func WriteActiveTenantCookie(c echo.Context, slug string) {
	c.SetCookie(&http.Cookie{
		Name:     ActiveTenantCookieName,
		Value:    slug,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(rememberMaxAge.Seconds()),
	})
}

// ReadActiveTenantCookie returns the stored tenant slug, or empty.
func ReadActiveTenantCookie(r *http.Request) string {
	cookie, err := r.Cookie(ActiveTenantCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// wellFormedToken checks the expected three-segment bearer token shape.
// No decoding or validation happens here; that is the auth service's job.
func wellFormedToken(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

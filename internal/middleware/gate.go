package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"rewardbase/internal/common"
	"rewardbase/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Well-known portal paths the gate redirects to.
const (
	LoginPath           = "/login"
	ChooseWorkspacePath = "/choose-workspace"
)

// CSPNonceKey is where the gate stores the per-request nonce on the echo
// context for renderers further down the chain.
const CSPNonceKey = "csp-nonce"

var (
	bypassPrefixes = []string{"/static/", "/assets/", "/favicon.ico", "/v1/", "/webhooks/", "/swagger/", "/health"}

	publicPaths = map[string]bool{
		LoginPath:           true,
		"/register":         true,
		"/verify-email":     true,
		"/accept-invite":    true,
		"/reset-password":   true,
		ChooseWorkspacePath: true,
	}

	tenantPathPattern = regexp.MustCompile(`^/t/([^/]+)/(admin|user)(/.*)?$`)
)

// Gate is the request-interception layer: it decides per request whether
// authentication is required, whether the path is tenant-scoped, and
// enforces role-based access before the request proceeds. It is a linear
// decision tree; every request is independent and stateless.
type Gate struct {
	authSvc    services.AuthService
	authzSvc   services.AuthzService
	production bool
}

func NewGate(authSvc services.AuthService, authzSvc services.AuthzService, production bool) *Gate {
	return &Gate{
		authSvc:    authSvc,
		authzSvc:   authzSvc,
		production: production,
	}
}

func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			// 1. Static assets and the namespaced API pass through untouched.
			for _, prefix := range bypassPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			userID, authenticated := g.resolveSession(c)

			// 2. Public paths skip the authentication requirement.
			if publicPaths[path] {
				if authenticated {
					g.attachUser(c, userID)
				}
				g.setSecurityHeaders(c)
				return next(c)
			}

			// 3. Everything else requires a session. Terminal.
			if !authenticated {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			g.attachUser(c, userID)

			// 4. Tenant-scoped paths get role enforcement.
			if match := tenantPathPattern.FindStringSubmatch(path); match != nil {
				slug, section := match[1], match[2]

				decision, err := g.authzSvc.Check(c.Request().Context(), userID, slug)
				if err != nil {
					// Resolver faults deny access; never allow on error.
					log.Printf("WARN: authorization check failed for %s: %v", slug, err)
					return c.Redirect(http.StatusFound, LoginPath)
				}

				if len(decision.Roles) == 0 {
					return c.Redirect(http.StatusFound, ChooseWorkspacePath)
				}
				if section == "admin" && !decision.Privileged() {
					return c.Redirect(http.StatusFound, fmt.Sprintf("/t/%s/user/overview", slug))
				}
			}

			// 5. Requests that proceed get the nonce and hardening headers.
			g.setSecurityHeaders(c)
			return next(c)
		}
	}
}

func (g *Gate) resolveSession(c echo.Context) (uuid.UUID, bool) {
	result := common.ReadSessionCookie(c.Request())
	if result.State != common.StateSession {
		return uuid.Nil, false
	}
	userID, err := g.authSvc.ValidateSessionToken(c.Request().Context(), result.Token)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func (g *Gate) attachUser(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func (g *Gate) setSecurityHeaders(c echo.Context) {
	nonce := newNonce()
	c.Set(CSPNonceKey, nonce)

	h := c.Response().Header()
	if g.production {
		h.Set("Content-Security-Policy", fmt.Sprintf("default-src 'self'; script-src 'self' 'nonce-%s'; object-src 'none'; base-uri 'self'; frame-ancestors 'none'", nonce))
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	} else {
		h.Set("Content-Security-Policy", fmt.Sprintf("default-src 'self'; script-src 'self' 'unsafe-eval' 'nonce-%s'", nonce))
	}
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
}

func newNonce() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return base64.RawStdEncoding.EncodeToString(bytes)
}

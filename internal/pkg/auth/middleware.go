package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
)

const (
	// AccessCookie keeps the access token
	AccessCookie = "access-token"
	// RefreshCookie keeps the refresh token
	RefreshCookie = "refresh-token"

	claimsKey = "auth.claims"
)

// Middleware requires a valid access token from the cookie or the Authorization header
func Middleware(t *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			str := takeToken(c.Request())
			if str == "" {
				return api.ErrUnauthorized("Authentication required")
			}
			claims, err := t.Parse(str)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					return api.ErrUnauthorized("Token has expired")
				}
				return api.ErrUnauthorized("Invalid token")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole allows only users with role equal or higher than min, must follow Middleware
func RequireRole(min string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return api.ErrUnauthorized("Authentication required")
			}
			if !HasRole(claims.Role, min) {
				return api.ErrForbidden("Insufficient permissions")
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns claims set by Middleware
func ClaimsFrom(c echo.Context) *Claims {
	res, _ := c.Get(claimsKey).(*Claims)
	return res
}

func takeToken(r *http.Request) string {
	if ck, err := r.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// SetCookies writes http only token cookies
func SetCookies(c echo.Context, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{Name: AccessCookie, Value: access, Path: "/", HttpOnly: true, Secure: secure,
		SameSite: http.SameSiteLaxMode, MaxAge: int(accessTTL.Seconds())})
	if refresh != "" {
		c.SetCookie(&http.Cookie{Name: RefreshCookie, Value: refresh, Path: "/auth", HttpOnly: true, Secure: secure,
			SameSite: http.SameSiteLaxMode, MaxAge: int(refreshTTL.Seconds())})
	}
}

// ClearCookies expires token cookies
func ClearCookies(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{Name: AccessCookie, Path: "/", HttpOnly: true, Secure: secure, MaxAge: -1})
	c.SetCookie(&http.Cookie{Name: RefreshCookie, Path: "/auth", HttpOnly: true, Secure: secure, MaxAge: -1})
}

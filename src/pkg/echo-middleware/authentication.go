// Package echomw provides the Echo middlewares of the scanner API.
package echomw

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

const (
	// Env var holding the API token.
	EnvBearerToken = "SCANNER_API_BEARER_TOKEN"

	// Realm for WWW-Authenticate header.
	authRealm = "document-scanner"
)

// BearerTokenFromEnv reads SCANNER_API_BEARER_TOKEN.
func BearerTokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvBearerToken))
}

// RequireBearerToken validates Authorization: Bearer <token> against expected.
// On failure responds 401. An empty expected token rejects every request.
func RequireBearerToken(expected string) echo.MiddlewareFunc {
	expectedBytes := []byte(strings.TrimSpace(expected))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(expectedBytes) == 0 {
				// Fail closed if not configured.
				return unauthorized(c)
			}

			received, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}

			// Constant-time compare.
			if subtle.ConstantTimeCompare([]byte(received), expectedBytes) != 1 {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}

// bearerToken extracts the token; the scheme is case-insensitive per RFC 6750.
func bearerToken(header string) (token string, ok bool) {
	auth := strings.TrimSpace(header)
	const bearer = "bearer "
	if len(auth) < len(bearer) || !strings.EqualFold(auth[:len(bearer)], bearer) {
		return "", false
	}
	token = strings.TrimSpace(auth[len(bearer):])
	return token, token != ""
}

func unauthorized(c echo.Context) error {
	LogRouteAccess(c, tl.Warning, "Unauthorized access attempt", palette.Yellow)

	// Avoids browser basic-auth popups.
	c.Response().Header().Set("WWW-Authenticate", `Bearer realm="`+authRealm+`"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}

package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	clerksvc "github.com/trezcool/elimu/services/clerk"
)

const (
	callerContextKey = "caller"
	apiKeyHeader     = "X-API-Key"
)

// bearerAuthMiddleware verifies the Authorization bearer token and stores the
// verified subject as the caller id. The caller id never comes from the
// request body.
func bearerAuthMiddleware(verifier clerksvc.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := bearerToken(ctx)
			if token == "" {
				return errUnauthorized
			}
			sub, err := verifier.Verify(token)
			if err != nil {
				return errUnauthorized
			}
			ctx.Set(callerContextKey, sub)
			return next(ctx)
		}
	}
}

// apiKeyOrBearerMiddleware accepts the shared static API key as an alternate
// credential; a caller authenticated this way has no subject.
func apiKeyOrBearerMiddleware(apiKey string, verifier clerksvc.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if key := ctx.Request().Header.Get(apiKeyHeader); key != "" && apiKey != "" && key == apiKey {
				return next(ctx)
			}
			token := bearerToken(ctx)
			if token == "" {
				return errUnauthorized
			}
			sub, err := verifier.Verify(token)
			if err != nil {
				return errUnauthorized
			}
			ctx.Set(callerContextKey, sub)
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) string {
	header := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Caller returns the verified caller id, or "" on unauthenticated paths.
func Caller(ctx echo.Context) string {
	caller, _ := ctx.Get(callerContextKey).(string)
	return caller
}

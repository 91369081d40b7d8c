package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/mealcal/core/internal/adapters/http"
)

// bearerToken extracts the token from an Authorization header.
// The returned message is the 401 body when the header is unusable.
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "Missing authorization header"
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

// authMiddleware resolves the calendar owner from the bearer token.
// Handlers read the owner only from the context, never from request bodies.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, problem := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if problem != "" {
				return echo.NewHTTPError(http.StatusUnauthorized, problem)
			}

			claims, err := s.authService.ValidateToken(token)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(),
					"error", err.Error(),
					"endpoint", c.Request().URL.Path,
				)
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(httpHandlers.ContextUserKey, claims.UserID)
			c.Set("user_email", claims.Email)
			return next(c)
		}
	}
}

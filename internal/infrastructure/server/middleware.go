package server

import (
	"fmt"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/tidytasks/api/internal/adapters/http"
	"github.com/tidytasks/api/internal/domain/entities"
)

// authMiddleware verifies the bearer token and stores the principal in
// the request context. Verification failures short-circuit before any
// storage access.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			userID, err := s.verifier.UserIDFromAuthHeader(header)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return fmt.Errorf("%w: %v", entities.ErrUnauthorized, err)
			}

			c.Set(httpHandlers.ContextKeyUserID, userID)

			return next(c)
		}
	}
}

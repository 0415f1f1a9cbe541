package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tidytasks/api/internal/domain/entities"
)

// ContextKeyUserID is the echo context key holding the authenticated
// principal, set by the auth middleware.
const ContextKeyUserID = "user_id"

// UserIDFromContext extracts the authenticated principal set by the
// auth middleware. Handlers behind the middleware always find one; a
// miss means the route was wired without auth and is rejected outright.
func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, entities.ErrUnauthorized
	}
	return userID, nil
}

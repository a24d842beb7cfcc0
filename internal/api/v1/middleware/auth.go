// Package middleware provides fiber middleware for the v1 API
package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/glrv/reviewd/internal/apperrors"
)

// userIDKey is the fiber locals key holding the authenticated user id
const userIDKey = "user_id"

// TokenResolver maps an opaque session token to a user id. Session issuance
// lives outside this service; *repos.UserRepository satisfies this.
type TokenResolver interface {
	GetUserIDByToken(ctx context.Context, token string) (uint, error)
}

// NewAuth returns a middleware that authenticates the request via the
// Authorization bearer token or the session cookie.
func NewAuth(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return apperrors.ErrInvalidToken
		}

		userID, err := resolver.GetUserIDByToken(c.Context(), token)
		if err != nil {
			return apperrors.ErrInvalidToken
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by NewAuth
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(userIDKey).(uint)
	return id
}

func extractToken(c *fiber.Ctx) string {
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Cookies("session")
}

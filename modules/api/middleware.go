package api

import (
	"context"
	"strings"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"

	"github.com/vishu1803/Collaborative-task-manager/domain/apperr"
	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
	"github.com/vishu1803/Collaborative-task-manager/modules/auth"
)

const (
	// UserContextKey is the key used to store the authenticated *domain.User.
	UserContextKey = "user"
	// UserIDContextKey holds the authenticated user id; the rate limiter keys on it.
	UserIDContextKey = "user_id"
)

// UserLookup loads the user a token belongs to.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// AuthMiddleware creates a middleware that resolves a bearer token to a user.
func AuthMiddleware(resolver auth.IdentityResolver, users UserLookup, logger types.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return writeError(c, logger, apperr.Unauthenticated("Access token is required"))
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return writeError(c, logger, apperr.Unauthenticated("Invalid authorization header format. Use: Bearer <token>"))
		}
		return authenticate(c, resolver, users, logger, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

// WebSocketAuthMiddleware authenticates the upgrade request. The token comes
// from the token query parameter or the Authorization header.
func WebSocketAuthMiddleware(resolver auth.IdentityResolver, users UserLookup, logger types.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, resolver, users, logger, webSocketToken(c))
	}
}

func webSocketToken(c *fiber.Ctx) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
}

func authenticate(c *fiber.Ctx, resolver auth.IdentityResolver, users UserLookup, logger types.Logger, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return writeError(c, logger, apperr.Unauthenticated("Access token is required"))
	}

	userID, err := resolver.Resolve(c.UserContext(), token)
	if err != nil {
		return writeError(c, logger, err)
	}

	u, err := users.GetUser(c.UserContext(), userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return writeError(c, logger, apperr.Unauthenticated("User not found"))
		}
		return writeError(c, logger, err)
	}

	c.Locals(UserContextKey, u)
	c.Locals(UserIDContextKey, u.ID)
	return c.Next()
}

// currentUser returns the user stored by the auth middleware.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals(UserContextKey).(*domain.User)
	return u
}

func actorOf(u *domain.User) domain.Actor {
	return domain.Actor{ID: u.ID, Name: u.Name}
}

// mutationsOnly runs h for non-GET requests and skips it otherwise.
func mutationsOnly(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		return h(c)
	}
}

package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// AuthMiddleware validates session tokens and stores the caller identity.
type AuthMiddleware struct {
	resolver *SessionResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, ok := m.resolver.Resolve(c.Get(fiber.HeaderAuthorization), c.Cookies(CookieName))
	if !ok {
		return apperrors.NewUnauthenticated("Unauthorized")
	}
	c.Locals(identityKey, &identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sweetshop/internal/domain"
	apperrors "github.com/spec-kit/sweetshop/pkg/util"
)

const principalKey = "auth_principal"

// TokenValidator resolves a bearer token to an existing user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.User, *domain.TokenClaims, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	User   *domain.User
	Claims *domain.TokenClaims
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return unauthorized(c, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return unauthorized(c, "invalid authorization header")
	}

	user, claims, err := m.tokens.ValidateToken(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return unauthorized(c, domain.ErrInvalidToken.Error())
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal.User != nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return apperrors.NewUnauthorized(message)
}

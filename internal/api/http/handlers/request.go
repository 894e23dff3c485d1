package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sweetshop/internal/auth"
	"github.com/spec-kit/sweetshop/internal/domain"
	apperrors "github.com/spec-kit/sweetshop/pkg/util"
	"github.com/spec-kit/sweetshop/pkg/validation"
)

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", validation.ToDetails(err))
	}
	return validation.Struct(out)
}

func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return apperrors.NewValidationError("invalid query", map[string]any{"query": err.Error()})
	}
	return validation.Struct(out)
}

func sweetID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": "must be a positive integer"})
	}
	return id, nil
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sweetshop/internal/api/dto"
	"github.com/spec-kit/sweetshop/internal/service"
)

// SweetsHandler manages inventory endpoints.
type SweetsHandler struct {
	service *service.InventoryService
}

// NewSweetsHandler constructs handler.
func NewSweetsHandler(inventory *service.InventoryService) *SweetsHandler {
	return &SweetsHandler{service: inventory}
}

// Create POST /api/sweets.
func (h *SweetsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.SweetCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sweet, err := h.service.Create(c.UserContext(), user, service.SweetInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSweetResponse(sweet)})
}

// List GET /api/sweets.
func (h *SweetsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var q dto.SweetListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	sweets, err := h.service.List(c.UserContext(), user, q.Skip, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponses(sweets)})
}

// Search GET /api/sweets/search.
func (h *SweetsHandler) Search(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var q dto.SweetSearchQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	sweets, err := h.service.Search(c.UserContext(), user, service.SweetSearch{
		Name:     q.Name,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponses(sweets)})
}

// Get GET /api/sweets/:id.
func (h *SweetsHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	sweet, err := h.service.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponse(sweet)})
}

// Update PUT|PATCH /api/sweets/:id.
func (h *SweetsHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	var req dto.SweetUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sweet, err := h.service.Update(c.UserContext(), user, id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponse(sweet)})
}

// Delete DELETE /api/sweets/:id.
func (h *SweetsHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Purchase POST /api/sweets/:id/purchase.
func (h *SweetsHandler) Purchase(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := sweetID(c)
	if err != nil {
		return err
	}

	sweet, err := h.service.Purchase(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponse(sweet)})
}

// Restock POST /api/sweets/:id/restock.
func (h *SweetsHandler) Restock(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	var req dto.RestockRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sweet, err := h.service.Restock(c.UserContext(), user, id, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSweetResponse(sweet)})
}

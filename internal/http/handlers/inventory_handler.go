package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := c.Query("slug")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing slug",
		})
	}
	slug, ok := validate.Slug(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "enter a valid product slug",
		})
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), slug)
	if err != nil {
		applog.Error(c, "availability.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not check availability",
		})
	}
	return c.JSON(avail)
}

package handlers

import (
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// Search matches product names. HTMX requests get the results fragment; an
// empty query lists everything.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	tmpl := "search"
	if isHTMX(c) {
		tmpl = "partials/search_results"
	}
	rawQ := c.Query("q")
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return c.Status(fiber.StatusBadRequest).Render(tmpl, fiber.Map{
			"Q": "", "Products": []any{}, "Count": 0, "Err": "Enter a valid keyword (letters/numbers only)",
		})
	}

	products, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load results. Please retry."})
	}

	return render(c, tmpl, fiber.Map{
		"Q": q, "Products": products, "Count": len(products),
	})
}

package handlers

import (
	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

const unavailable = "This item is no longer available"

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	cat, ok1 := validate.Slug(c.Params("category"))
	brand, ok2 := validate.Slug(c.Params("brand"))
	slug, ok3 := validate.Slug(c.Params("slug"))
	if !ok1 || !ok2 || !ok3 {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, unavailable)
	}
	d, err := h.Catalog.GetProduct(c.UserContext(), cat, brand, slug)
	if domain.KindOf(err) == domain.KindNotFound {
		return notFound(c, unavailable)
	}
	if err != nil {
		return err
	}
	return render(c, "product", fiber.Map{
		"P":       d.Product,
		"Images":  d.Images,
		"Related": d.Related,
		"MaxQty":  d.Product.Quantity,
	})
}

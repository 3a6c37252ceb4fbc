package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		// Fallback: read the CSRF cookie directly if Locals wasn't populated
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = popFlashes(c)
	}
	return c.Render(tmpl, data)
}

func isHTMX(c *fiber.Ctx) bool { return c.Get("HX-Request") == "true" }

// cartChanged ends a cart mutation. HTMX callers get 204 plus the event that
// refreshes every cart fragment; plain form posts go back to the cart.
func cartChanged(c *fiber.Ctx) error {
	if isHTMX(c) {
		c.Set("HX-Trigger", "update-cart")
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

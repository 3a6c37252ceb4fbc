package handlers

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) cart(c *fiber.Ctx) (*domain.Cart, error) {
	return h.Cart.GetOrCreate(c.UserContext(), sessionOf(c))
}

func cartData(cart *domain.Cart) fiber.Map {
	return fiber.Map{
		"Cart":     cart,
		"Items":    cart.Items,
		"Subtotal": cart.Subtotal(),
		"Tax":      cart.TaxAmount(),
		"Discount": cart.DisplayDiscount(),
		"Total":    cart.TotalPrice(),
	}
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.cart(c)
	if err != nil {
		return err
	}
	return render(c, "cart", cartData(cart))
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return notFound(c, unavailable)
	}
	qty, ok := validate.Qty(c.FormValue("quantity"))
	if !ok {
		return cartFailure(c, "cart.add", domain.Invalid("Quantity must be a whole number from 1 to %d.", validate.MaxQty))
	}

	created, err := h.Cart.Add(c.UserContext(), sessionOf(c), slug, qty)
	if err != nil {
		return cartFailure(c, "cart.add", err)
	}
	p, err := h.Cart.Product(c.UserContext(), slug)
	if err != nil {
		return err
	}
	if created {
		addFlash(c, "success", fmt.Sprintf("%s has been added to your cart", p.Name))
	} else {
		addFlash(c, "success", fmt.Sprintf("%s quantity has been updated in your cart.", p.Name))
	}
	applog.Info(c, "cart.add", map[string]any{"slug": slug, "qty": qty, "created": created})
	return cartChanged(c)
}

func (h *CartHandler) Increase(c *fiber.Ctx) error {
	return h.step(c, "cart.increase", h.Cart.Increase)
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	return h.step(c, "cart.decrease", h.Cart.Decrease)
}

func (h *CartHandler) step(c *fiber.Ctx, action string, fn func(context.Context, services.Session, string) error) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return notFound(c, unavailable)
	}
	if err := fn(c.UserContext(), sessionOf(c), slug); err != nil {
		return cartFailure(c, action, err)
	}
	applog.Info(c, action, map[string]any{"slug": slug})
	return cartChanged(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return notFound(c, unavailable)
	}
	if _, err := h.Cart.Remove(c.UserContext(), sessionOf(c), slug); err != nil {
		return cartFailure(c, "cart.remove", err)
	}
	applog.Info(c, "cart.remove", map[string]any{"slug": slug})
	return cartChanged(c)
}

// Items renders the cart line list fragment.
func (h *CartHandler) Items(c *fiber.Ctx) error {
	cart, err := h.cart(c)
	if err != nil {
		return err
	}
	return render(c, "partials/cart_items", cartData(cart))
}

// Summary renders the totals fragment, along with any pending messages.
func (h *CartHandler) Summary(c *fiber.Ctx) error {
	cart, err := h.cart(c)
	if err != nil {
		return err
	}
	data := cartData(cart)
	data["Fragment"] = true
	return render(c, "partials/cart_summary", data)
}

// Button renders the navigation cart button with the item count.
func (h *CartHandler) Button(c *fiber.Ctx) error {
	cart, err := h.cart(c)
	if err != nil {
		return err
	}
	return render(c, "partials/cart_button", fiber.Map{"Count": cart.TotalItems(), "Flashes": []Flash(nil)})
}

func (h *CartHandler) Empty(c *fiber.Ctx) error {
	return render(c, "partials/cart_empty", fiber.Map{"Flashes": []Flash(nil)})
}

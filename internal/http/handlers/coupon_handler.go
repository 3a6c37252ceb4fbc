package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CouponHandler struct {
	Coupons *services.CouponService
}

func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	code, ok := validate.CouponCode(c.FormValue("code"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "code"})
		addFlash(c, "error", "Invalid coupon code.")
		return cartChanged(c)
	}
	cp, err := h.Coupons.Apply(c.UserContext(), sessionOf(c), code)
	if err != nil {
		return cartFailure(c, "coupon.apply", err)
	}
	applog.Audit(c, "coupon.apply", map[string]any{"code": cp.Code})
	addFlash(c, "success", "Coupon applied successfully.")
	return cartChanged(c)
}

func (h *CouponHandler) Remove(c *fiber.Ctx) error {
	code, err := h.Coupons.Remove(c.UserContext(), sessionOf(c))
	if err != nil {
		return cartFailure(c, "coupon.remove", err)
	}
	applog.Audit(c, "coupon.remove", map[string]any{"code": code})
	addFlash(c, "success", fmt.Sprintf("Coupon %q has been removed.", code))
	return cartChanged(c)
}

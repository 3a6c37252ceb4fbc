package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

type PaymentHandler struct {
	Payment *services.PaymentService
	Order   *services.OrderService
	BaseURL string
	// SignatureHeader names the header carrying the processor's webhook signature.
	SignatureHeader string
}

func (h *PaymentHandler) url(c *fiber.Ctx, path string) string {
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" {
		base = c.BaseURL()
	}
	return base + path
}

// Process shows the order about to be paid.
func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	o, err := h.Order.Current(c.UserContext(), sessionOf(c))
	if domain.KindOf(err) == domain.KindNotFound {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	return render(c, "payment", fiber.Map{"Order": o})
}

// Start redirects the customer to the processor's checkout.
func (h *PaymentHandler) Start(c *fiber.Ctx) error {
	sess := sessionOf(c)
	target, err := h.Payment.Start(c.UserContext(), sess, h.url(c, "/payment/completed"), h.url(c, "/payment/canceled"))
	if domain.KindOf(err) == domain.KindNotFound {
		return notFound(c, "Order not found")
	}
	if err != nil {
		applog.Error(c, "payment.start.fail", err, nil)
		o, oerr := h.Order.Current(c.UserContext(), sess)
		if oerr != nil {
			return err
		}
		c.Status(fiber.StatusBadGateway)
		return render(c, "payment", fiber.Map{"Order": o, "Err": "The payment provider is unavailable. Please try again."})
	}
	applog.Audit(c, "payment.start", nil)
	return c.Redirect(target, fiber.StatusSeeOther)
}

// Completed and Canceled are landing pages only; they never change the
// order. The webhook does that.
func (h *PaymentHandler) Completed(c *fiber.Ctx) error {
	return h.landing(c, "payment_completed")
}

func (h *PaymentHandler) Canceled(c *fiber.Ctx) error {
	return h.landing(c, "payment_canceled")
}

func (h *PaymentHandler) landing(c *fiber.Ctx, tmpl string) error {
	sess := sessionOf(c)
	o, err := h.Order.Current(c.UserContext(), sess)
	if err != nil && domain.KindOf(err) != domain.KindNotFound {
		return err
	}
	h.Payment.Finish(sess)
	return render(c, tmpl, fiber.Map{"Order": o})
}

// Webhook receives processor callbacks. It is exempt from CSRF and relies on
// the signature instead.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	res, err := h.Payment.HandleWebhook(c.UserContext(), c.Body(), c.Get(h.SignatureHeader))
	switch domain.KindOf(err) {
	case domain.KindValidation:
		applog.Security(c, "payment.webhook.reject", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case domain.KindNotFound:
		applog.Security(c, "payment.webhook.unknown_order", map[string]any{"order_id": res.OrderID})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		applog.Error(c, "payment.webhook.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	applog.Audit(c, "payment.webhook", map[string]any{
		"order_id": res.OrderID,
		"from":     string(res.From),
		"to":       string(res.To),
		"applied":  res.Applied,
	})
	return c.JSON(fiber.Map{"received": true, "applied": res.Applied})
}

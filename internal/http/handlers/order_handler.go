package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/invoice"
	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Cart  *services.CartService
	Order *services.OrderService
}

func (h *OrderHandler) checkoutData(c *fiber.Ctx, form services.CustomerFields, errs map[string]string) (fiber.Map, error) {
	cart, err := h.Cart.GetOrCreate(c.UserContext(), sessionOf(c))
	if err != nil {
		return nil, err
	}
	data := cartData(cart)
	data["Form"] = form
	data["Errors"] = errs
	return data, nil
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	data, err := h.checkoutData(c, services.CustomerFields{}, nil)
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return err
	}
	return render(c, "checkout", data)
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var form services.CustomerFields
	if err := c.BodyParser(&form); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "form"})
		return c.Status(fiber.StatusBadRequest).SendString("malformed form")
	}

	o, err := h.Order.Create(c.UserContext(), sessionOf(c), form)
	if domain.KindOf(err) == domain.KindValidation {
		var fields map[string]string
		var de *domain.Error
		if errors.As(err, &de) {
			fields = de.Fields
		}
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		applog.Security(c, "validation.fail", map[string]any{"fields": keys})
		data, derr := h.checkoutData(c, form, fields)
		if derr != nil {
			return derr
		}
		c.Status(fiber.StatusBadRequest)
		return render(c, "checkout", data)
	}
	if err != nil {
		applog.Error(c, "order.create.fail", err, nil)
		return err
	}

	applog.Audit(c, "order.create", map[string]any{
		"order_id": o.ID,
		"items":    len(o.Items),
		"total":    o.TotalPrice().StringFixed(2),
		"discount": o.Discount.StringFixed(2),
	})
	return c.Redirect("/payment/process", fiber.StatusSeeOther)
}

func (h *OrderHandler) Items(c *fiber.Ctx) error {
	cart, err := h.Cart.GetOrCreate(c.UserContext(), sessionOf(c))
	if err != nil {
		return err
	}
	return render(c, "partials/order_items", cartData(cart))
}

func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	cart, err := h.Cart.GetOrCreate(c.UserContext(), sessionOf(c))
	if err != nil {
		return err
	}
	return render(c, "partials/order_summary", cartData(cart))
}

// Invoice sends the PDF invoice for an order placed from this session.
// Anything else is reported as missing.
func (h *OrderHandler) Invoice(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validate.OrderID(id) {
		applog.Security(c, "validation.fail", map[string]any{"field": "order_id"})
		return notFound(c, domain.ErrOrderNotFound.Message)
	}
	if !h.Order.PlacedInSession(sessionOf(c), id) {
		applog.Security(c, "order.invoice.deny", map[string]any{"order_id": id})
		return notFound(c, domain.ErrOrderNotFound.Message)
	}
	o, err := h.Order.Get(c.UserContext(), id)
	if domain.KindOf(err) == domain.KindNotFound {
		return notFound(c, domain.ErrOrderNotFound.Message)
	}
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := invoice.Write(&buf, o); err != nil {
		applog.Error(c, "order.invoice.render", err, map[string]any{"order_id": id})
		return err
	}
	applog.Info(c, "order.invoice", map[string]any{"order_id": id})
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("filename=%s", invoice.Filename(o)))
	return c.Send(buf.Bytes())
}

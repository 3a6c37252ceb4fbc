package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

const genericError = "Something went wrong. Please try again."

// ErrorHandler is the app-wide fallback. It logs the cause and shows a
// friendly page that never includes error details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code == fiber.StatusNotFound {
		return notFound(c, "Page not found")
	}
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		applog.Security(c, "request.rejected", map[string]any{"code": fe.Code})
		return c.Status(fe.Code).SendString(fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": genericError,
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(genericError)
	}
	return nil
}

// cartFailure maps a failed cart or coupon mutation onto a response. Rule
// violations become flash messages; the request itself still succeeds.
func cartFailure(c *fiber.Ctx, action string, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	switch de.Kind {
	case domain.KindNotFound:
		applog.Info(c, action+".notfound", map[string]any{"error": de.Message})
		return notFound(c, de.Message)
	case domain.KindRule:
		applog.Info(c, action+".rejected", map[string]any{"error": de.Message})
		addFlash(c, "error", de.Message)
		return cartChanged(c)
	case domain.KindValidation:
		applog.Security(c, "validation.fail", map[string]any{"action": action, "error": de.Message})
		return c.Status(fiber.StatusBadRequest).SendString(de.Message)
	}
	return err
}

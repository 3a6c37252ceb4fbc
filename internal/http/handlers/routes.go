package handlers

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	applog "storefront/internal/log"
)

// HeaderCSRF is accepted in place of the csrf form field, for HTMX posts.
const HeaderCSRF = "X-CSRF-Token"

const webhookPath = "/payment/webhook"

// NewEngine loads the templates under dir with the helpers they use.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return d.StringFixed(2) })
	engine.AddFunc("has", func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	})
	engine.AddFunc("seq", func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	})
	return engine
}

// CSRFConfig protects every unsafe method except the payment webhook, which
// is authenticated by its signature.
func CSRFConfig(secure bool) csrf.Config {
	return csrf.Config{
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   secure,
		ContextKey:     "csrf",
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok := c.Get(HeaderCSRF); tok != "" {
				return tok, nil
			}
			if tok := c.FormValue("csrf"); tok != "" {
				return tok, nil
			}
			return "", errors.New("missing csrf token")
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == webhookPath
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}
}

// Register mounts every storefront route on app. Global middleware (request
// id, logging, CSRF, sessions) is the caller's job.
func Register(app *fiber.App, d *Deps) {
	// Guarded media to avoid traversal
	mediaDir := d.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// Catalog
	app.Get("/", d.CatalogHandler.Home)
	app.Get("/products/:category/:brand/:slug", d.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), d.SearchHandler.Search)

	// API
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, d.InventoryHandler.Check)

	// Cart
	cart := app.Group("/cart")
	cart.Get("/", d.CartHandler.View)
	cart.Post("/add/:slug", d.CartHandler.Add)
	cart.Post("/increase/:slug", d.CartHandler.Increase)
	cart.Post("/decrease/:slug", d.CartHandler.Decrease)
	cart.Post("/remove/:slug", d.CartHandler.Remove)
	cart.Get("/items", d.CartHandler.Items)
	cart.Get("/summary", d.CartHandler.Summary)
	cart.Get("/button", d.CartHandler.Button)
	cart.Get("/empty", d.CartHandler.Empty)

	// Coupons
	app.Post("/coupons/apply", d.CouponHandler.Apply)
	app.Post("/coupons/remove", d.CouponHandler.Remove)

	// Orders
	app.Get("/orders/create", d.OrderHandler.Checkout)
	app.Post("/orders/create", d.OrderHandler.Place)
	app.Get("/orders/items", d.OrderHandler.Items)
	app.Get("/orders/summary", d.OrderHandler.Summary)
	app.Get("/orders/:id/pdf", d.OrderHandler.Invoice)

	// Payment
	app.Get("/payment/process", d.PaymentHandler.Process)
	app.Post("/payment/process", d.PaymentHandler.Start)
	app.Get("/payment/completed", d.PaymentHandler.Completed)
	app.Get("/payment/canceled", d.PaymentHandler.Canceled)
	app.Post(webhookPath, d.PaymentHandler.Webhook)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, "Page not found")
	})
}

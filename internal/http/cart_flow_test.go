package handlers_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTMXAddTriggersCartRefresh(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 5)
	b := ta.browser(t)

	resp := b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("HX-Trigger"); got != "update-cart" {
		t.Fatalf("expected HX-Trigger update-cart, got %q", got)
	}

	s := readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "Product A has been added to your cart") {
		t.Fatalf("added message missing from summary fragment; body=%s", s)
	}
	if !strings.Contains(s, "$20.00") || !strings.Contains(s, "$3.00") || !strings.Contains(s, "$23.00") {
		t.Fatalf("unexpected totals; body=%s", s)
	}

	// The message is shown once
	if s := readBody(t, b.htmxGet("/cart/summary")); strings.Contains(s, "has been added") {
		t.Fatalf("message shown twice; body=%s", s)
	}

	if s := readBody(t, b.htmxGet("/cart/button")); !strings.Contains(s, "2") {
		t.Fatalf("cart button count missing; body=%s", s)
	}
}

func TestPlainAddRedirectsToCart(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 5)
	b := ta.browser(t)

	resp := b.post("/cart/add/"+p.Slug, url.Values{"quantity": {"1"}})
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/cart" {
		t.Fatalf("expected redirect to /cart, got %q", loc)
	}
	s := readBody(t, b.get("/cart"))
	if !strings.Contains(s, "Product A") || !strings.Contains(s, "has been added to your cart") {
		t.Fatalf("cart page missing item or message; body=%s", s)
	}
}

func TestAddBeyondStockShowsMessage(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product B", "7.50", 3)
	b := ta.browser(t)

	b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	b.htmxGet("/cart/summary") // consume the added message

	resp := b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("a refused add still answers 204, got %d", resp.StatusCode)
	}
	s := readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "Sorry we only have 3 units of Product B in stock") {
		t.Fatalf("stock message missing; body=%s", s)
	}
	if !strings.Contains(s, "$15.00") {
		t.Fatalf("quantity should have stayed at 2; body=%s", s)
	}
}

func TestStepAndRemove(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 2)
	b := ta.browser(t)

	// stepping an item that is not in the cart
	if resp := b.htmxPost("/cart/increase/"+p.Slug, nil); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing line, got %d", resp.StatusCode)
	}

	b.htmxPost("/cart/add/"+p.Slug, nil)
	b.htmxPost("/cart/increase/"+p.Slug, nil)
	b.htmxPost("/cart/increase/"+p.Slug, nil)
	s := readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "cannot exceed available stock") || !strings.Contains(s, "$20.00") {
		t.Fatalf("ceiling not enforced; body=%s", s)
	}

	b.htmxPost("/cart/decrease/"+p.Slug, nil)
	b.htmxPost("/cart/decrease/"+p.Slug, nil)
	s = readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "cannot be less than 1") || !strings.Contains(s, "$10.00") {
		t.Fatalf("floor not enforced; body=%s", s)
	}

	if resp := b.htmxPost("/cart/remove/"+p.Slug, nil); resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", resp.StatusCode)
	}
	if s := readBody(t, b.get("/cart")); !strings.Contains(s, "Your cart is empty.") {
		t.Fatalf("cart should be empty; body=%s", s)
	}
}

func TestCouponApplyAndRemove(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 5)
	b := ta.browser(t)

	b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	b.htmxGet("/cart/summary")

	b.htmxPost("/coupons/apply", url.Values{"code": {"nope"}})
	if s := readBody(t, b.htmxGet("/cart/summary")); !strings.Contains(s, "Invalid coupon code.") {
		t.Fatalf("invalid coupon message missing; body=%s", s)
	}

	b.htmxPost("/coupons/apply", url.Values{"code": {"save10"}})
	s := readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "Coupon applied successfully.") {
		t.Fatalf("applied message missing; body=%s", s)
	}
	if !strings.Contains(s, "-10% off") || !strings.Contains(s, "$20.70") {
		t.Fatalf("discounted totals missing; body=%s", s)
	}

	b.htmxPost("/coupons/apply", url.Values{"code": {"SAVE10"}})
	if s := readBody(t, b.htmxGet("/cart/summary")); !strings.Contains(s, "already applied") {
		t.Fatalf("idempotent apply message missing; body=%s", s)
	}

	b.htmxPost("/coupons/remove", nil)
	s = readBody(t, b.htmxGet("/cart/summary"))
	if !strings.Contains(s, "has been removed.") || !strings.Contains(s, "$23.00") {
		t.Fatalf("coupon not removed; body=%s", s)
	}

	b.htmxPost("/coupons/remove", nil)
	if s := readBody(t, b.htmxGet("/cart/summary")); !strings.Contains(s, "There is no coupon applied to your cart.") {
		t.Fatalf("no-coupon message missing; body=%s", s)
	}
}

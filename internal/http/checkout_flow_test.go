package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repos"
)

func validCustomer() url.Values {
	return url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Lovelace"},
		"email":      {"ada@example.com"},
		"address":    {"12 Analytical St"},
		"country":    {"UK"},
		"zip_code":   {"N1 9GU"},
	}
}

func webhookRequest(body, sig string) *http.Request {
	req := httptest.NewRequest("POST", "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payment.SignatureHeader, sig)
	return req
}

func (a *testApp) signedWebhook(orderID, status string) *http.Request {
	body := `{"order_id":"` + orderID + `","payment_status":"` + status + `"}`
	return webhookRequest(body, a.sandbox.Sign([]byte(body)))
}

func (a *testApp) order(t *testing.T, id string) domain.Order {
	t.Helper()
	o, err := repos.NewOrderRepo(a.db).Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load order %s: %v", id, err)
	}
	return o
}

// Cart to order to payment, with the webhook as the only status writer
func TestCheckoutAndPaymentFlow(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 5)
	b := ta.browser(t)

	b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	b.htmxPost("/coupons/apply", url.Values{"code": {"SAVE10"}})

	if resp := b.get("/orders/create"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("checkout page: expected 200, got %d", resp.StatusCode)
	}

	resp := b.post("/orders/create", validCustomer())
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("place order: expected 303, got %d body=%s", resp.StatusCode, readBody(t, resp))
	}
	if loc := resp.Header.Get("Location"); loc != "/payment/process" {
		t.Fatalf("expected redirect to /payment/process, got %q", loc)
	}

	var orderID string
	if err := ta.db.Get(&orderID, `SELECT id FROM orders`); err != nil {
		t.Fatalf("find order: %v", err)
	}
	o := ta.order(t, orderID)
	if o.Status != domain.StatusPending {
		t.Fatalf("new order should be pending, got %s", o.Status)
	}
	if o.CouponCode != "SAVE10" || o.Discount.StringFixed(2) != "2.00" {
		t.Fatalf("coupon snapshot wrong: %q %s", o.CouponCode, o.Discount)
	}
	if len(o.Items) != 1 || o.Items[0].Quantity != 2 || o.Items[0].Price.StringFixed(2) != "10.00" {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
	if got := o.AmountDue().StringFixed(2); got != "20.70" {
		t.Fatalf("expected amount due 20.70, got %s", got)
	}

	jobs := ta.queue.Jobs()
	if len(jobs) != 1 || jobs[0].Kind != notify.KindOrderCreated || jobs[0].OrderID != orderID {
		t.Fatalf("expected one order.created job, got %+v", jobs)
	}

	// The cart was emptied and its coupon dropped
	if s := readBody(t, b.get("/cart")); !strings.Contains(s, "Your cart is empty.") {
		t.Fatalf("cart should be empty after ordering; body=%s", s)
	}

	s := readBody(t, b.get("/payment/process"))
	if !strings.Contains(s, orderID) || !strings.Contains(s, "$20.70") {
		t.Fatalf("payment page missing order or amount; body=%s", s)
	}

	resp = b.post("/payment/process", nil)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("start payment: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "http://shop.test/payment/completed?order="+orderID {
		t.Fatalf("unexpected processor redirect %q", loc)
	}

	// Landing on the success page does not pay the order
	if s := readBody(t, b.get("/payment/completed")); !strings.Contains(s, orderID) {
		t.Fatalf("completed page missing order id; body=%s", s)
	}
	if st := ta.order(t, orderID).Status; st != domain.StatusPending {
		t.Fatalf("landing page changed status to %s", st)
	}
	// and it ends the payment flow for the session
	if resp := b.get("/payment/process"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 after the flow ended, got %d", resp.StatusCode)
	}

	// Forged webhook
	resp = b.do(webhookRequest(`{"order_id":"`+orderID+`","payment_status":"paid"}`, "00"))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad signature: expected 400, got %d", resp.StatusCode)
	}
	if st := ta.order(t, orderID).Status; st != domain.StatusPending {
		t.Fatalf("forged webhook changed status to %s", st)
	}

	// Signed webhook settles the order
	resp = b.do(ta.signedWebhook(orderID, payment.StatusPaid))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("webhook: expected 200, got %d", resp.StatusCode)
	}
	var ack struct {
		Received bool `json:"received"`
		Applied  bool `json:"applied"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.Received || !ack.Applied {
		t.Fatalf("unexpected ack %+v", ack)
	}
	if st := ta.order(t, orderID).Status; st != domain.StatusSuccessful {
		t.Fatalf("expected successful, got %s", st)
	}

	// A late failure does not reopen a settled order
	resp = b.do(ta.signedWebhook(orderID, payment.StatusFailed))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("late webhook: expected 200, got %d", resp.StatusCode)
	}
	if st := ta.order(t, orderID).Status; st != domain.StatusSuccessful {
		t.Fatalf("settled order moved to %s", st)
	}

	// Unknown order
	if resp := b.do(ta.signedWebhook("ORD-20200101000000-abcdef", payment.StatusPaid)); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown order: expected 404, got %d", resp.StatusCode)
	}

	var used int
	if err := ta.db.Get(&used, `SELECT used_count FROM coupons WHERE code = 'SAVE10'`); err != nil {
		t.Fatalf("coupon usage: %v", err)
	}
	if used != 1 {
		t.Fatalf("expected coupon used once, got %d", used)
	}
}

func TestPaymentPagesWithoutOrder(t *testing.T) {
	ta := newTestApp(t)
	b := ta.browser(t)

	if resp := b.get("/payment/process"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("process without order: expected 404, got %d", resp.StatusCode)
	}
	if resp := b.post("/payment/process", nil); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("start without order: expected 404, got %d", resp.StatusCode)
	}
	if resp := b.get("/payment/canceled"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("canceled landing: expected 200, got %d", resp.StatusCode)
	}
}

func TestOrderInvoiceDownload(t *testing.T) {
	ta := newTestApp(t)
	p := ta.addProduct(t, "Product A", "10.00", 5)
	b := ta.browser(t)

	b.htmxPost("/cart/add/"+p.Slug, url.Values{"quantity": {"2"}})
	if resp := b.post("/orders/create", validCustomer()); resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("place order: expected 303, got %d", resp.StatusCode)
	}
	var orderID string
	if err := ta.db.Get(&orderID, `SELECT id FROM orders`); err != nil {
		t.Fatalf("find order: %v", err)
	}

	// still available after the payment pages drop the current order
	s := readBody(t, b.get("/payment/completed"))
	if !strings.Contains(s, "/orders/"+orderID+"/pdf") {
		t.Fatalf("completed page should link the invoice; body=%s", s)
	}

	resp := b.get("/orders/" + orderID + "/pdf")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("invoice: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "filename=order_"+orderID+".pdf" {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if body := readBody(t, resp); !strings.HasPrefix(body, "%PDF-") {
		t.Fatalf("body is not a PDF: %.20q", body)
	}

	// another visitor cannot fetch it, nor can anyone fetch a malformed id
	other := ta.browser(t)
	if resp := other.get("/orders/" + orderID + "/pdf"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("foreign session: expected 404, got %d", resp.StatusCode)
	}
	if resp := b.get("/orders/ORD-1/pdf"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("malformed id: expected 404, got %d", resp.StatusCode)
	}
}

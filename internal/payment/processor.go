// Package payment hands orders to an external payment processor and turns
// its callbacks into order status changes.
package payment

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// Processor starts a hosted checkout and verifies the processor's callbacks.
type Processor interface {
	// Checkout returns the URL the customer is redirected to.
	Checkout(ctx context.Context, o domain.Order, successURL, cancelURL string) (string, error)
	// ParseWebhook verifies sig against payload and decodes the event.
	ParseWebhook(payload []byte, sig string) (Event, error)
}

// Event is a processor notification about one order.
type Event struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

var ErrSignature = errors.New("payment: invalid webhook signature")

// Processor payment statuses.
const (
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
	StatusExpired   = "expired"
	StatusInTransit = "in_transit"
)

// OrderStatusFor maps a processor payment status onto an order status. The
// second result is false for statuses that do not move the order.
func OrderStatusFor(paymentStatus string) (domain.OrderStatus, bool) {
	switch paymentStatus {
	case StatusPaid:
		return domain.StatusSuccessful, true
	case StatusFailed, StatusCanceled, StatusExpired:
		return domain.StatusFailed, true
	case StatusInTransit:
		return domain.StatusDelivering, true
	}
	return "", false
}

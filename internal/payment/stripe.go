package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"storefront/internal/domain"
)

// StripeSignatureHeader is where Stripe puts its webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// Stripe uses hosted Checkout Sessions. The order id travels as the
// session's client reference.
type Stripe struct {
	sessions      *session.Client
	webhookSecret string
	currency      string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		webhookSecret: webhookSecret,
		currency:      string(stripe.CurrencyUSD),
	}
}

// Checkout charges the order's amount due as one line.
func (s *Stripe) Checkout(ctx context.Context, o domain.Order, successURL, cancelURL string) (string, error) {
	cents := o.AmountDue().Shift(2).Round(0).IntPart()
	if cents < 0 {
		cents = 0
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(o.ID),
		CustomerEmail:     stripe.String(o.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(cents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order " + o.ID),
				},
			},
		}},
	}
	params.Context = ctx
	cs, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	return cs.URL, nil
}

func (s *Stripe) ParseWebhook(payload []byte, sig string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, sig, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, ErrSignature
	}

	var cs stripe.CheckoutSession
	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, err
		}
	default:
		return Event{}, nil
	}

	out := Event{OrderID: cs.ClientReferenceID}
	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			out.PaymentStatus = StatusPaid
		}
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		// delayed methods settle after the session completed unpaid
		out.PaymentStatus = StatusPaid
	case stripe.EventTypeCheckoutSessionExpired:
		out.PaymentStatus = StatusExpired
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		out.PaymentStatus = StatusFailed
	}
	return out, nil
}

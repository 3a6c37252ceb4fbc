package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payment"
)

type PaymentService struct {
	Orders    *OrderService
	Processor payment.Processor
	Log       *zap.Logger
}

func NewPaymentService(orders *OrderService, p payment.Processor, log *zap.Logger) *PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{Orders: orders, Processor: p, Log: log}
}

// Start opens a processor checkout for the session's order and returns the
// redirect URL. The order stays pending whatever happens here.
func (s *PaymentService) Start(ctx context.Context, sess Session, successURL, cancelURL string) (string, error) {
	o, err := s.Orders.Current(ctx, sess)
	if err != nil {
		return "", err
	}
	url, err := s.Processor.Checkout(ctx, o, successURL, cancelURL)
	if err != nil {
		s.Log.Error("payment.checkout", zap.Error(err), zap.String("order_id", o.ID))
		return "", err
	}
	s.Log.Info("payment.checkout", zap.String("order_id", o.ID), zap.String("amount_due", o.AmountDue().StringFixed(2)))
	return url, nil
}

// Finish ends the payment flow for the session. It does not touch the order:
// only the webhook may change its status.
func (s *PaymentService) Finish(sess Session) {
	sess.Delete(SessionOrderID)
}

// WebhookResult says what a webhook did.
type WebhookResult struct {
	OrderID string
	From    domain.OrderStatus
	To      domain.OrderStatus
	Applied bool
}

// HandleWebhook verifies and applies a processor callback. Statuses that do
// not map, and orders no longer pending, are acknowledged without change.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sig string) (WebhookResult, error) {
	ev, err := s.Processor.ParseWebhook(payload, sig)
	if errors.Is(err, payment.ErrSignature) {
		return WebhookResult{}, domain.Invalid("Invalid signature.")
	}
	if err != nil {
		return WebhookResult{}, domain.Invalid("Malformed event.")
	}
	res := WebhookResult{OrderID: ev.OrderID}
	next, ok := payment.OrderStatusFor(ev.PaymentStatus)
	if !ok || ev.OrderID == "" {
		return res, nil
	}

	o, err := s.Orders.Get(ctx, ev.OrderID)
	if err != nil {
		return res, err
	}
	res.From, res.To = o.Status, next
	if !o.Status.CanTransition(next) {
		return res, nil
	}
	applied, err := s.Orders.Orders.TransitionStatus(ctx, o.ID, o.Status, next)
	if err != nil {
		return res, err
	}
	res.Applied = applied
	return res, nil
}

package notify

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// OrderLookup loads an order by id.
type OrderLookup interface {
	Get(ctx context.Context, id string) (domain.Order, error)
}

// OrderCreatedEmail builds the confirmation sent to the customer.
func OrderCreatedEmail(from string, o domain.Order) Message {
	return Message{
		From:    from,
		To:      []string{o.Email},
		Subject: "order " + o.ID,
		Body:    fmt.Sprintf("Dear %s,\n\nYou have successfully placed an order.Your order ID is %s.", o.FirstName, o.ID),
	}
}

// OrderCreatedHandler mails the confirmation for order.created jobs and
// ignores every other kind.
func OrderCreatedHandler(orders OrderLookup, mailer Mailer, from string) Handler {
	return func(ctx context.Context, job Job) error {
		if job.Kind != KindOrderCreated {
			return nil
		}
		o, err := orders.Get(ctx, job.OrderID)
		if err != nil {
			return fmt.Errorf("load order %s: %w", job.OrderID, err)
		}
		return mailer.Send(ctx, OrderCreatedEmail(from, o))
	}
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusSuccessful OrderStatus = "successful"
	StatusFailed     OrderStatus = "failed"
	StatusDelivering OrderStatus = "delivering"
)

func (s OrderStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// CanTransition reports whether s may move to next. Only pending orders move,
// and only the payment collaborator moves them.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s != StatusPending {
		return false
	}
	switch next {
	case StatusSuccessful, StatusFailed, StatusDelivering:
		return true
	}
	return false
}

// NewOrderID returns ORD-<UTC timestamp>-<6 hex chars>. Collisions are not retried.
func NewOrderID(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + uuid.NewString()[:6]
}

type Order struct {
	ID         string          `db:"id"`
	FirstName  string          `db:"first_name"`
	LastName   string          `db:"last_name"`
	Email      string          `db:"email"`
	Address    string          `db:"address"`
	Country    string          `db:"country"`
	ZipCode    string          `db:"zip_code"`
	Status     OrderStatus     `db:"status"`
	CouponCode string          `db:"coupon_code"`
	Discount   decimal.Decimal `db:"discount"`
	CreatedAt  Timestamp       `db:"created_at"`
	UpdatedAt  Timestamp       `db:"updated_at"`

	Items []OrderItem `db:"-"`
}

type OrderItem struct {
	ID          int64           `db:"id"`
	OrderID     string          `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Price       decimal.Decimal `db:"price"` // price at purchase
	Quantity    int             `db:"quantity"`
}

func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrice sums the item snapshots; it ignores discount and tax.
func (o Order) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.TotalPrice())
	}
	return sum
}

// TaxDue is the tax part of AmountDue.
func (o Order) TaxDue() decimal.Decimal {
	return o.TotalPrice().Sub(o.Discount).Mul(TaxRate)
}

// AmountDue is what the payment processor is asked to charge.
func (o Order) AmountDue() decimal.Decimal {
	return o.TotalPrice().Sub(o.Discount).Mul(taxMultiplier)
}

func (o Order) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

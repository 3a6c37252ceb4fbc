package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID           int64           `db:"id"`
	Code         string          `db:"code"`
	DiscountType DiscountType    `db:"discount_type"`
	Value        decimal.Decimal `db:"value"`
	ValidFrom    Timestamp       `db:"valid_from"`
	ValidTo      Timestamp       `db:"valid_to"`
	Active       bool            `db:"active"`
	MaxUsage     int             `db:"max_usage"` // 0 means unlimited
	UsedCount    int             `db:"used_count"`
}

// ValidAt reports whether the coupon is active and its window contains t.
func (c Coupon) ValidAt(t time.Time) bool {
	return c.Active && !t.Before(c.ValidFrom.Time) && !t.After(c.ValidTo.Time)
}

func (c Coupon) Exhausted() bool {
	return c.MaxUsage > 0 && c.UsedCount >= c.MaxUsage
}

// DiscountOn computes the discount against a pre-tax subtotal. A fixed
// discount is not capped, so it may exceed the subtotal.
func (c Coupon) DiscountOn(subtotal decimal.Decimal) decimal.Decimal {
	if c.DiscountType == DiscountPercentage {
		return subtotal.Mul(c.Value).Div(hundred)
	}
	return c.Value
}

func (c Coupon) Display() string {
	switch c.DiscountType {
	case DiscountPercentage:
		return fmt.Sprintf("-%s%% off", c.Value.Round(0).String())
	case DiscountFixed:
		return fmt.Sprintf("-$%d", c.Value.IntPart())
	}
	return ""
}

package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to every cart.
var TaxRate = decimal.RequireFromString("0.15")

var taxMultiplier = decimal.NewFromInt(1).Add(TaxRate)

type Cart struct {
	ID        string        `db:"id"`
	CouponID  sql.NullInt64 `db:"coupon_id"`
	CreatedAt Timestamp     `db:"created_at"`
	UpdatedAt Timestamp     `db:"updated_at"`

	Coupon *Coupon    `db:"-"`
	Items  []CartItem `db:"-"`
}

type CartItem struct {
	Product  Product
	Quantity int
}

// Price is the product's current price, not a snapshot.
func (i CartItem) Price() decimal.Decimal { return i.Product.Price }

func (i CartItem) TotalPrice() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Item(productID int64) (CartItem, bool) {
	for _, it := range c.Items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.TotalPrice())
	}
	return sum
}

// TaxAmount is the tax on the undiscounted subtotal, as displayed in the
// summary. TotalPrice taxes the discounted amount instead.
func (c *Cart) TaxAmount() decimal.Decimal {
	return c.Subtotal().Mul(TaxRate)
}

func (c *Cart) Discount() decimal.Decimal {
	if c.Coupon == nil {
		return decimal.Zero
	}
	return c.Coupon.DiscountOn(c.Subtotal())
}

// TaxDue is the tax actually charged: the rate applied after the discount.
func (c *Cart) TaxDue() decimal.Decimal {
	return c.Subtotal().Sub(c.Discount()).Mul(TaxRate)
}

func (c *Cart) TotalPrice() decimal.Decimal {
	return c.Subtotal().Sub(c.Discount()).Mul(taxMultiplier)
}

func (c *Cart) DisplayDiscount() string {
	if c.Coupon == nil {
		return ""
	}
	return c.Coupon.Display()
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Brand struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

type Condition string

const (
	ConditionNew         Condition = "new"
	ConditionUsed        Condition = "used"
	ConditionRefurbished Condition = "refurbished"
)

// Conditions lists the selectable conditions in display order.
var Conditions = []Condition{ConditionNew, ConditionUsed, ConditionRefurbished}

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionRefurbished:
		return true
	}
	return false
}

func (c Condition) Label() string {
	switch c {
	case ConditionNew:
		return "New"
	case ConditionUsed:
		return "Used"
	case ConditionRefurbished:
		return "Refurbished"
	}
	return string(c)
}

type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	CategoryID  int64           `db:"category_id"`
	BrandID     int64           `db:"brand_id"`
	Description string          `db:"description"`
	Quantity    int             `db:"quantity"` // units in stock
	Condition   Condition       `db:"condition"`
	Price       decimal.Decimal `db:"price"`
	Slug        string          `db:"slug"`
	Available   bool            `db:"available"`
	CreatedAt   Timestamp       `db:"created_at"`
	UpdatedAt   Timestamp       `db:"updated_at"`

	// joined for URLs and listings
	CategorySlug string `db:"category_slug"`
	CategoryName string `db:"category_name"`
	BrandSlug    string `db:"brand_slug"`
	BrandName    string `db:"brand_name"`
}

func (p Product) URL() string {
	return fmt.Sprintf("/products/%s/%s/%s", p.CategorySlug, p.BrandSlug, p.Slug)
}

type ProductImage struct {
	ID        int64  `db:"id"`
	ProductID int64  `db:"product_id"`
	Path      string `db:"path"`
	AltText   string `db:"alt_text"`
}

// Availability is the public stock summary served by the availability API.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty,omitempty"`
}

package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindRule // business rule violated; the operation was a no-op
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindRule:
		return "RULE"
	default:
		return "INTERNAL"
	}
}

// Error is a user-facing failure. Message is safe to show.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string // per-field messages, validation only
}

func (e *Error) Error() string { return e.Message }

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Rule(format string, args ...any) *Error {
	return &Error{Kind: KindRule, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrProductNotFound     = NotFound("Product not found")
	ErrCartItemNotFound    = NotFound("Item is not in your cart")
	ErrOrderNotFound       = NotFound("Order not found")
	ErrCouponInvalid       = Rule("Invalid coupon code.")
	ErrCouponApplied       = Rule("The coupon is already applied to your cart.")
	ErrCouponNoLongerValid = Rule("The coupon is no longer valid.")
	ErrNoCoupon            = Rule("There is no coupon applied to your cart.")
)

// StockExceeded is returned when an add would push a line past the stock.
func StockExceeded(p Product) *Error {
	return Rule("Sorry we only have %d units of %s in stock", p.Quantity, p.Name)
}

func StockCeiling(p Product) *Error {
	return Rule("Quantity of %s cannot exceed available stock.", p.Name)
}

func QuantityFloor(p Product) *Error {
	return Rule("Quantity of %s cannot be less than 1.", p.Name)
}

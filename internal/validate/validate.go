package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'().&\\-]{1,50}$`)
	reCode  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	reOrder = regexp.MustCompile(`^ORD-[0-9]{14}-[0-9a-f]{6}$`)
)

// Slug validates a URL slug as produced by gosimple/slug.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 200 {
		return "", false
	}
	return s, reSlug.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
// An empty query is valid and means "everything".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// MaxQty caps how many units one add request may ask for.
const MaxQty = 50

// Qty parses a requested quantity. Empty means 1; anything that is not a
// whole number between 1 and MaxQty is rejected rather than adjusted.
func Qty(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxQty {
		return 0, false
	}
	return n, true
}

// Page parses a 1-based page number; anything unusable is page 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Condition validates allowed condition enums.
func Condition(s string) (domain.Condition, bool) {
	c := domain.Condition(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Price parses a non-negative decimal filter bound. Empty means unset.
func Price(s string) (decimal.NullDecimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(d), true
}

// OrderID checks the ORD-<timestamp>-<hex> shape.
func OrderID(s string) bool { return reOrder.MatchString(s) }

// CouponCode validates the shape of a coupon code before it hits the store.
func CouponCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCode.MatchString(s)
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report fields by their form names
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// Struct validates s against its `validate` tags. Failures come back as a
// *domain.Error of kind validation with one message per form field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &domain.Error{Kind: domain.KindValidation, Message: "Please correct the highlighted fields.", Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	}
	return "Invalid value."
}

package validate_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

func TestSlug(t *testing.T) {
	for _, ok := range []string{"game-boy-color", "nes", "product-a-2"} {
		_, valid := validate.Slug(ok)
		assert.True(t, valid, ok)
	}
	for _, bad := range []string{"", "Game-Boy", "../etc", "a--b", "-a", "a b"} {
		_, valid := validate.Slug(bad)
		assert.False(t, valid, bad)
	}
}

func TestQ(t *testing.T) {
	q, ok := validate.Q("  ")
	assert.True(t, ok)
	assert.Empty(t, q)

	q, ok = validate.Q(" Super Nintendo (SNES) ")
	assert.True(t, ok)
	assert.Equal(t, "Super Nintendo (SNES)", q)

	_, ok = validate.Q("<script>")
	assert.False(t, ok)

	long := strings.Repeat("é", 60)
	q, ok = validate.Q(long)
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("é", 50), q)
}

func TestQtyAndPage(t *testing.T) {
	n, ok := validate.Qty("")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	n, ok = validate.Qty(" 3 ")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	n, ok = validate.Qty("50")
	assert.True(t, ok)
	assert.Equal(t, 50, n)
	for _, bad := range []string{"0", "-1", "abc", "2.5", "51", "5000"} {
		_, ok = validate.Qty(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, 1, validate.Page("-2"))
	assert.Equal(t, 4, validate.Page("4"))
}

func TestConditionAndPrice(t *testing.T) {
	c, ok := validate.Condition(" Used ")
	assert.True(t, ok)
	assert.Equal(t, domain.ConditionUsed, c)
	_, ok = validate.Condition("mint")
	assert.False(t, ok)

	p, ok := validate.Price("")
	assert.True(t, ok)
	assert.False(t, p.Valid)
	p, ok = validate.Price("12.50")
	assert.True(t, ok)
	assert.Equal(t, "12.50", p.Decimal.StringFixed(2))
	_, ok = validate.Price("-1")
	assert.False(t, ok)
	_, ok = validate.Price("ten")
	assert.False(t, ok)
}

func TestCouponCode(t *testing.T) {
	code, ok := validate.CouponCode(" SAVE10 ")
	assert.True(t, ok)
	assert.Equal(t, "SAVE10", code)
	_, ok = validate.CouponCode("DROP TABLE;")
	assert.False(t, ok)
}

type signup struct {
	Name  string `form:"name" validate:"required,max=5"`
	Email string `form:"email" validate:"required,email"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validate.Struct(signup{Name: "Ada", Email: "ada@example.com"}))

	err := validate.Struct(signup{Name: "Adalovelace", Email: "nope"})
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Equal(t, map[string]string{
		"name":  "Ensure this value has at most 5 characters.",
		"email": "Enter a valid email address.",
	}, de.Fields)

	err = validate.Struct(signup{})
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "This field is required.", de.Fields["name"])
}

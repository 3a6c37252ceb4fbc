package services_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func names(ps []domain.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestListProductsFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Cheap", "5.00", 1)
	f.product(t, "Pricey", "50.00", 1)
	f.product(t, "Middle", "20.00", 1)

	page, err := f.catalog.ListProducts(f.ctx, repos.ProductFilter{
		Categories: []string{"test"},
		SortBy:     repos.SortPriceAsc,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheap", "Middle", "Pricey"}, names(page.Products))

	page, err = f.catalog.ListProducts(f.ctx, repos.ProductFilter{
		Brands:   []string{"acme"},
		MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(10)),
		SortBy:   repos.SortPriceDesc,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pricey", "Middle"}, names(page.Products))

	page, err = f.catalog.ListProducts(f.ctx, repos.ProductFilter{
		Conditions: []string{string(domain.ConditionRefurbished)},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"NES Console"}, names(page.Products))
}

func TestListProductsPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < services.PageSize+2; i++ {
		f.product(t, fmt.Sprintf("Item %02d", i), "1.00", 1)
	}
	filter := repos.ProductFilter{Categories: []string{"test"}}

	first, err := f.catalog.ListProducts(f.ctx, filter, 1)
	require.NoError(t, err)
	assert.Len(t, first.Products, services.PageSize)
	assert.Equal(t, 2, first.Pages)
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())

	// past the end clamps to the last page
	last, err := f.catalog.ListProducts(f.ctx, filter, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Page)
	assert.Len(t, last.Products, 2)
	assert.False(t, last.HasNext())
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Product A", "10.00", 5)
	f.product(t, "Product B", "12.00", 5)

	d, err := f.catalog.GetProduct(f.ctx, "test", "acme", p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, d.Product.ID)
	assert.Equal(t, []string{"Product B"}, names(d.Related))

	_, err = f.catalog.GetProduct(f.ctx, "retro-consoles", "acme", p.Slug)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = f.catalog.GetProduct(f.ctx, "test", "acme", "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	seeded, err := f.catalog.GetProduct(f.ctx, "retro-consoles", "nintendo", "game-boy-color")
	require.NoError(t, err)
	require.Len(t, seeded.Images, 1)
	assert.Equal(t, "products/game-boy-color/main.jpg", seeded.Images[0].Path)
	assert.Equal(t, "Game Boy Color - Image 1", seeded.Images[0].AltText)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	got, err := f.catalog.Search(f.ctx, "nes")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"NES Console", "Super Nintendo (SNES) Console"}, names(got))

	all, err := f.catalog.Search(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	f := newFixture(t)

	got, err := f.catalog.Search(f.ctx, "_")
	require.NoError(t, err)
	assert.Empty(t, got)

	f.product(t, "Cable_Link 100% Copper", "4.00", 3)
	for _, q := range []string{"_", "e_l", "100%"} {
		got, err = f.catalog.Search(f.ctx, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cable_Link 100% Copper"}, names(got), q)
	}
}

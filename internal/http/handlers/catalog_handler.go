package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// queryAll collects a multi-valued query parameter, accepting both repeated
// keys and comma-separated values.
func queryAll(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseFilter(c *fiber.Ctx) (repos.ProductFilter, string, bool) {
	var f repos.ProductFilter
	for _, s := range queryAll(c, "categories") {
		v, ok := validate.Slug(s)
		if !ok {
			return f, "categories", false
		}
		f.Categories = append(f.Categories, v)
	}
	for _, s := range queryAll(c, "brands") {
		v, ok := validate.Slug(s)
		if !ok {
			return f, "brands", false
		}
		f.Brands = append(f.Brands, v)
	}
	for _, s := range queryAll(c, "conditions") {
		v, ok := validate.Condition(s)
		if !ok {
			return f, "conditions", false
		}
		f.Conditions = append(f.Conditions, string(v))
	}
	var ok bool
	if f.MinPrice, ok = validate.Price(c.Query("minimum_price")); !ok {
		return f, "minimum_price", false
	}
	if f.MaxPrice, ok = validate.Price(c.Query("maximum_price")); !ok {
		return f, "maximum_price", false
	}
	switch sort := c.Query("sort_by"); sort {
	case "", repos.SortPriceAsc, repos.SortPriceDesc:
		f.SortBy = sort
	default:
		return f, "sort_by", false
	}
	return f, "", true
}

// Home lists products with filters, sorting and pagination. HTMX requests
// get only the product grid.
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	ctx := c.UserContext()
	f, field, ok := parseFilter(c)
	status := fiber.StatusOK
	errMsg := ""
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		status, errMsg = fiber.StatusBadRequest, "Invalid filter"
		f = repos.ProductFilter{}
	}

	page, err := h.Catalog.ListProducts(ctx, f, validate.Page(c.Query("page")))
	if err != nil {
		return err
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	brands, err := h.Catalog.ListBrands(ctx)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"Page":       page,
		"Products":   page.Products,
		"Categories": cats,
		"Brands":     brands,
		"Conditions": domain.Conditions,
		"Filter":     f,
		"PrevURL":    pageURL(c, page.Prev()),
		"NextURL":    pageURL(c, page.Next()),
		"Err":        errMsg,
	}
	c.Status(status)
	if isHTMX(c) {
		return render(c, "partials/product_items", data)
	}
	return render(c, "home", data)
}

// pageURL keeps the current filters and swaps the page number.
func pageURL(c *fiber.Ctx, page int) string {
	q, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(page))
	return "/?" + q.Encode()
}

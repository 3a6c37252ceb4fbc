package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

const (
	PageSize     = 10
	RelatedLimit = 6
)

type CatalogService struct {
	Cats   *repos.CategoryRepo
	Brands *repos.BrandRepo
	Prods  *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, brands *repos.BrandRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Brands: brands, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.Brands.List(ctx)
}

// ProductPage is one page of a filtered listing.
type ProductPage struct {
	Products []domain.Product
	Page     int
	Pages    int
	Total    int
}

func (p ProductPage) HasPrev() bool { return p.Page > 1 }
func (p ProductPage) HasNext() bool { return p.Page < p.Pages }
func (p ProductPage) Prev() int     { return p.Page - 1 }
func (p ProductPage) Next() int     { return p.Page + 1 }

// ListProducts returns the requested page of f. A page past the end is
// clamped to the last page.
func (s *CatalogService) ListProducts(ctx context.Context, f repos.ProductFilter, page int) (ProductPage, error) {
	total, err := s.Prods.Count(ctx, f)
	if err != nil {
		return ProductPage{}, err
	}
	pages := (total + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	f.Limit = PageSize
	f.Offset = (page - 1) * PageSize
	prods, err := s.Prods.List(ctx, f)
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: prods, Page: page, Pages: pages, Total: total}, nil
}

// ProductDetail is a product with its images and related products.
type ProductDetail struct {
	Product domain.Product
	Images  []domain.ProductImage
	Related []domain.Product
}

// GetProduct looks the product up by slug. The category and brand slugs in
// the URL must match the product's own.
func (s *CatalogService) GetProduct(ctx context.Context, categorySlug, brandSlug, productSlug string) (ProductDetail, error) {
	p, err := s.Prods.BySlug(ctx, productSlug)
	if repos.IsNotFound(err) {
		return ProductDetail{}, domain.ErrProductNotFound
	}
	if err != nil {
		return ProductDetail{}, err
	}
	if p.CategorySlug != categorySlug || p.BrandSlug != brandSlug {
		return ProductDetail{}, domain.ErrProductNotFound
	}
	imgs, err := s.Prods.Images(ctx, p.ID)
	if err != nil {
		return ProductDetail{}, err
	}
	related, err := s.Prods.Related(ctx, p, RelatedLimit)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{Product: p, Images: imgs, Related: related}, nil
}

// Search matches product names; an empty query returns every product.
func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	return s.Prods.Search(ctx, q, 0)
}

// SetPrice changes a product's current price. Carts pick it up immediately;
// placed orders keep the price they were created with.
func (s *CatalogService) SetPrice(ctx context.Context, productSlug string, price decimal.Decimal) error {
	p, err := s.Prods.BySlug(ctx, productSlug)
	if repos.IsNotFound(err) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return s.Prods.UpdatePrice(ctx, p.ID, price)
}

package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Tx returns a copy of the repo bound to tx.
func (r *ProductRepo) Tx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productSelect = `
  SELECT
    p.id, p.name, p.category_id, p.brand_id, COALESCE(p.description,'') AS description,
    p.quantity, p.condition, p.price, p.slug, p.available, p.created_at, p.updated_at,
    c.slug AS category_slug, c.name AS category_name,
    b.slug AS brand_slug, b.name AS brand_name
  FROM products p
  JOIN categories c ON c.id = p.category_id
  JOIN brands b ON b.id = p.brand_id`

// ProductFilter narrows the catalog listing. Empty slices mean "any".
type ProductFilter struct {
	Categories []string // category slugs
	Brands     []string // brand slugs
	Conditions []string
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	SortBy     string // ascending-price | descending-price
	Limit      int
	Offset     int
}

const (
	SortPriceAsc  = "ascending-price"
	SortPriceDesc = "descending-price"
)

func (f ProductFilter) where() (string, []any) {
	var conds []string
	var args []any
	if len(f.Categories) > 0 {
		conds = append(conds, `c.slug IN (?)`)
		args = append(args, f.Categories)
	}
	if len(f.Brands) > 0 {
		conds = append(conds, `b.slug IN (?)`)
		args = append(args, f.Brands)
	}
	if len(f.Conditions) > 0 {
		conds = append(conds, `p.condition IN (?)`)
		args = append(args, f.Conditions)
	}
	if f.MinPrice.Valid {
		conds = append(conds, `CAST(p.price AS REAL) >= ?`)
		args = append(args, f.MinPrice.Decimal.InexactFloat64())
	}
	if f.MaxPrice.Valid {
		conds = append(conds, `CAST(p.price AS REAL) <= ?`)
		args = append(args, f.MaxPrice.Decimal.InexactFloat64())
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f ProductFilter) orderBy() string {
	switch f.SortBy {
	case SortPriceAsc:
		return ` ORDER BY CAST(p.price AS REAL) ASC, p.name`
	case SortPriceDesc:
		return ` ORDER BY CAST(p.price AS REAL) DESC, p.name`
	}
	return ` ORDER BY p.name`
}

// Count returns how many products match f, ignoring Limit and Offset.
func (r *ProductRepo) Count(ctx context.Context, f ProductFilter) (int, error) {
	where, args := f.where()
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM products p
  JOIN categories c ON c.id = p.category_id
  JOIN brands b ON b.id = p.brand_id`+where, args...)
	if err != nil {
		return 0, err
	}
	var n int
	err = sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(q), args...)
	return n, err
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where, args := f.where()
	q := productSelect + where + f.orderBy()
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	err = sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...)
	return out, err
}

func (r *ProductRepo) BySlug(ctx context.Context, s string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, productSelect+` WHERE p.slug = ?`, s)
	return p, err
}

func (r *ProductRepo) ByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, productSelect+` WHERE p.id = ?`, id)
	return p, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches q against product names, case-insensitively. q is literal
// text; LIKE wildcards in it are escaped.
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	query := productSelect
	var args []any
	if q != "" {
		query += ` WHERE LOWER(p.name) LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(q))+"%")
	}
	query += ` ORDER BY p.name`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, query, args...)
	return out, err
}

// Related returns other products from p's category.
func (r *ProductRepo) Related(ctx context.Context, p domain.Product, limit int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, productSelect+`
  WHERE p.category_id = ? AND p.id <> ?
  ORDER BY p.name
  LIMIT ?`, p.CategoryID, p.ID, limit)
	return out, err
}

// Create inserts p, deriving a unique slug from its name when none is set.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.Price.IsNegative() {
		return domain.Invalid("Price cannot be negative.")
	}
	if p.Quantity < 0 {
		return domain.Invalid("Quantity cannot be negative.")
	}
	if !p.Condition.Valid() {
		return domain.Invalid("Unknown condition %q.", p.Condition)
	}
	if p.Slug == "" {
		s, err := r.uniqueSlug(ctx, slug.Make(p.Name))
		if err != nil {
			return err
		}
		p.Slug = s
	}
	now := domain.Now()
	res, err := r.db.ExecContext(ctx, `
	  INSERT INTO products(name, category_id, brand_id, description, quantity, condition, price, slug, available, created_at, updated_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.CategoryID, p.BrandID, p.Description, p.Quantity, p.Condition, p.Price, p.Slug, p.Available, now, now)
	if err != nil {
		return err
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *ProductRepo) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var n int
		if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM products WHERE slug = ?`, candidate); err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (r *ProductRepo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return domain.Invalid("Price cannot be negative.")
	}
	_, err := r.db.ExecContext(ctx, `UPDATE products SET price = ?, updated_at = ? WHERE id = ?`, price, domain.Now(), id)
	return err
}

// Images returns p's images in upload order.
func (r *ProductRepo) Images(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	out := []domain.ProductImage{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT id, product_id, path, alt_text FROM product_images
	  WHERE product_id = ? ORDER BY id`, productID)
	return out, err
}

// AddImage records an image stored at products/<slug>/<file>. An empty alt
// text becomes "<name> - Image <n>".
func (r *ProductRepo) AddImage(ctx context.Context, p domain.Product, filename, alt string) (domain.ProductImage, error) {
	img := domain.ProductImage{
		ProductID: p.ID,
		Path:      path.Join("products", p.Slug, path.Base(filename)),
		AltText:   alt,
	}
	if img.AltText == "" {
		var n int
		if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM product_images WHERE product_id = ?`, p.ID); err != nil {
			return img, err
		}
		img.AltText = fmt.Sprintf("%s - Image %d", p.Name, n+1)
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO product_images(product_id, path, alt_text) VALUES(?,?,?)`,
		img.ProductID, img.Path, img.AltText)
	if err != nil {
		return img, err
	}
	img.ID, err = res.LastInsertId()
	return img, err
}

// IsNotFound reports whether err is a missing-row error from any repo.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }

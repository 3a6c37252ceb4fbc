package repos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) Tx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: tx} }

// Create persists an empty cart under a fresh id.
func (r *CartRepo) Create(ctx context.Context) (domain.Cart, error) {
	now := domain.Now()
	c := domain.Cart{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	_, err := r.db.ExecContext(ctx, `INSERT INTO carts(id, created_at, updated_at) VALUES(?,?,?)`,
		c.ID, c.CreatedAt, c.UpdatedAt)
	return c, err
}

// Get loads the cart header only; items and coupon are filled by the service.
func (r *CartRepo) Get(ctx context.Context, id string) (domain.Cart, error) {
	var c domain.Cart
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT id, coupon_id, created_at, updated_at FROM carts WHERE id = ?`, id)
	return c, err
}

type itemRow struct {
	domain.Product
	CartQuantity int `db:"cart_quantity"`
}

// Items returns the cart's lines joined with their current product rows.
func (r *CartRepo) Items(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `
	  SELECT
	    p.id, p.name, p.category_id, p.brand_id, COALESCE(p.description,'') AS description,
	    p.quantity, p.condition, p.price, p.slug, p.available, p.created_at, p.updated_at,
	    c.slug AS category_slug, c.name AS category_name,
	    b.slug AS brand_slug, b.name AS brand_name,
	    ci.quantity AS cart_quantity
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  JOIN categories c ON c.id = p.category_id
	  JOIN brands b ON b.id = p.brand_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, p.name
	`, cartID); err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CartItem{Product: row.Product, Quantity: row.CartQuantity})
	}
	return out, nil
}

// ItemQuantity returns sql.ErrNoRows when the product is not in the cart.
func (r *CartRepo) ItemQuantity(ctx context.Context, cartID string, productID int64) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, `
	  SELECT quantity FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	return qty, err
}

func (r *CartRepo) InsertItem(ctx context.Context, cartID string, productID int64, qty int) error {
	now := domain.Now()
	if _, err := r.db.ExecContext(ctx, `
	  INSERT INTO cart_items(cart_id, product_id, quantity, created_at, updated_at)
	  VALUES(?,?,?,?,?)`, cartID, productID, qty, now, now); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) SetQuantity(ctx context.Context, cartID string, productID int64, qty int) error {
	if _, err := r.db.ExecContext(ctx, `
	  UPDATE cart_items SET quantity = ?, updated_at = ?
	  WHERE cart_id = ? AND product_id = ?`, qty, domain.Now(), cartID, productID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

// DeleteItem reports whether a line was removed.
func (r *CartRepo) DeleteItem(ctx context.Context, cartID string, productID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, r.touch(ctx, cartID)
}

func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

// SetCoupon attaches couponID, or detaches when it is not Valid.
func (r *CartRepo) SetCoupon(ctx context.Context, cartID string, couponID sql.NullInt64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE carts SET coupon_id = ?, updated_at = ? WHERE id = ?`,
		couponID, domain.Now(), cartID)
	return err
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = ? WHERE id = ?`, domain.Now(), cartID)
	return err
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Tx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

// Create inserts a new order header.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	now := domain.Now()
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, first_name, last_name, email, address, country, zip_code, status, coupon_code, discount, created_at, updated_at)
	  VALUES
	    (?,  ?,          ?,         ?,     ?,       ?,       ?,        ?,      ?,           ?,        ?,          ?)
	`, o.ID, o.FirstName, o.LastName, o.Email, o.Address, o.Country, o.ZipCode, o.Status, o.CouponCode, o.Discount, now, now)
	if err != nil {
		return err
	}
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

// InsertItem inserts a single line item.
func (r *OrderRepo) InsertItem(ctx context.Context, it *domain.OrderItem) error {
	res, err := r.db.ExecContext(ctx, `
	  INSERT INTO order_items(order_id, product_id, product_name, price, quantity)
	  VALUES(?, ?, ?, ?, ?)
	`, it.OrderID, it.ProductID, it.ProductName, it.Price, it.Quantity)
	if err != nil {
		return err
	}
	it.ID, err = res.LastInsertId()
	return err
}

// Get loads the order with its items. Missing orders yield sql.ErrNoRows.
func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, `
		SELECT id, first_name, last_name, email, address, country, zip_code, status, coupon_code, discount, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id); err != nil {
		return domain.Order{}, err
	}

	o.Items = []domain.OrderItem{}
	if err := sqlx.SelectContext(ctx, r.db, &o.Items, `
		SELECT id, order_id, product_id, product_name, price, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, id); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// TransitionStatus moves the order from one status to another and reports
// whether it did. A row already past from is left alone.
func (r *OrderRepo) TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, domain.Now(), id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

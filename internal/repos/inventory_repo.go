package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) Tx(tx *sqlx.Tx) *InventoryRepo { return &InventoryRepo{db: tx} }

// StockRow is the stock view of a product.
type StockRow struct {
	ProductID int64  `db:"id"`
	Name      string `db:"name"`
	Qty       int    `db:"quantity"`
	Available bool   `db:"available"`
}

// Stock returns the stock row for a product slug.
// If no product exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Stock(ctx context.Context, productSlug string) (StockRow, error) {
	var row StockRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT id, name, quantity, available FROM products
		WHERE slug = ?
	`, productSlug)
	return row, err
}

// SetQty overwrites the units in stock for a product.
func (r *InventoryRepo) SetQty(ctx context.Context, productID int64, qty int) error {
	if qty < 0 {
		return domain.Invalid("Quantity cannot be negative.")
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?
	`, qty, domain.Now(), productID)
	return err
}

// ListLow returns products at or below threshold units, lowest first.
func (r *InventoryRepo) ListLow(ctx context.Context, threshold int) ([]StockRow, error) {
	rows := []StockRow{}
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT id, name, quantity, available FROM products
		WHERE quantity <= ?
		ORDER BY quantity, name
	`, threshold)
	return rows, err
}

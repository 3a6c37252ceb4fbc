package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CouponRepo struct{ db sqlx.ExtContext }

func NewCouponRepo(db *sqlx.DB) *CouponRepo { return &CouponRepo{db: db} }

func (r *CouponRepo) Tx(tx *sqlx.Tx) *CouponRepo { return &CouponRepo{db: tx} }

const couponSelect = `
  SELECT id, code, discount_type, value, valid_from, valid_to, active, max_usage, used_count
  FROM coupons`

// ByCode looks the code up case-insensitively.
func (r *CouponRepo) ByCode(ctx context.Context, code string) (domain.Coupon, error) {
	var c domain.Coupon
	err := sqlx.GetContext(ctx, r.db, &c, couponSelect+` WHERE LOWER(code) = ?`, strings.ToLower(strings.TrimSpace(code)))
	return c, err
}

func (r *CouponRepo) ByID(ctx context.Context, id int64) (domain.Coupon, error) {
	var c domain.Coupon
	err := sqlx.GetContext(ctx, r.db, &c, couponSelect+` WHERE id = ?`, id)
	return c, err
}

func (r *CouponRepo) Create(ctx context.Context, c *domain.Coupon) error {
	if c.ValidTo.Before(c.ValidFrom.Time) {
		return domain.Invalid("Coupon %s ends before it starts.", c.Code)
	}
	if c.Value.IsNegative() {
		return domain.Invalid("Coupon value cannot be negative.")
	}
	res, err := r.db.ExecContext(ctx, `
	  INSERT INTO coupons(code, discount_type, value, valid_from, valid_to, active, max_usage, used_count)
	  VALUES(?,?,?,?,?,?,?,?)`,
		c.Code, c.DiscountType, c.Value, c.ValidFrom, c.ValidTo, c.Active, c.MaxUsage, c.UsedCount)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// IncrementUsage counts one redemption of the coupon.
func (r *CouponRepo) IncrementUsage(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE coupons SET used_count = used_count + 1 WHERE id = ?`, id)
	return err
}

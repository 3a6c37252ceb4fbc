package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CouponService struct {
	Carts   *CartService
	Coupons *repos.CouponRepo
	Clock   func() time.Time
}

func NewCouponService(carts *CartService, coupons *repos.CouponRepo) *CouponService {
	return &CouponService{Carts: carts, Coupons: coupons, Clock: time.Now}
}

// Apply attaches the coupon to the session's cart, replacing any other.
func (s *CouponService) Apply(ctx context.Context, sess Session, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, domain.ErrCouponInvalid
	}
	cart, err := s.Carts.GetOrCreate(ctx, sess)
	if err != nil {
		return domain.Coupon{}, err
	}
	c, err := s.Coupons.ByCode(ctx, code)
	if repos.IsNotFound(err) {
		return domain.Coupon{}, domain.ErrCouponInvalid
	}
	if err != nil {
		return domain.Coupon{}, err
	}
	if !c.ValidAt(s.Clock()) {
		return c, domain.ErrCouponInvalid
	}
	if cart.CouponID.Valid && cart.CouponID.Int64 == c.ID {
		return c, domain.ErrCouponApplied
	}
	if c.Exhausted() {
		return c, domain.ErrCouponNoLongerValid
	}
	if err := s.Carts.Carts.SetCoupon(ctx, cart.ID, sql.NullInt64{Int64: c.ID, Valid: true}); err != nil {
		return c, err
	}
	return c, nil
}

// Remove detaches the cart's coupon and returns its code.
func (s *CouponService) Remove(ctx context.Context, sess Session) (string, error) {
	cart, err := s.Carts.GetOrCreate(ctx, sess)
	if err != nil {
		return "", err
	}
	if !cart.CouponID.Valid {
		return "", domain.ErrNoCoupon
	}
	if err := s.Carts.Carts.SetCoupon(ctx, cart.ID, sql.NullInt64{}); err != nil {
		return "", err
	}
	if cart.Coupon == nil {
		return "", nil
	}
	return cart.Coupon.Code, nil
}

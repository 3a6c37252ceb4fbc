package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CartService struct {
	DB      *sqlx.DB
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Coupons *repos.CouponRepo
}

func NewCartService(db *sqlx.DB, carts *repos.CartRepo, prods *repos.ProductRepo, coupons *repos.CouponRepo) *CartService {
	return &CartService{DB: db, Carts: carts, Prods: prods, Coupons: coupons}
}

// GetOrCreate returns the session's cart with its items and coupon loaded.
// A missing or stale cart id in the session is replaced by a new cart.
func (s *CartService) GetOrCreate(ctx context.Context, sess Session) (*domain.Cart, error) {
	if id, _ := sess.Get(SessionCartID).(string); id != "" {
		c, err := load(ctx, s.Carts, s.Coupons, id)
		if err == nil {
			return c, nil
		}
		if !repos.IsNotFound(err) {
			return nil, err
		}
	}
	c, err := s.Carts.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	sess.Set(SessionCartID, c.ID)
	c.Items = []domain.CartItem{}
	return &c, nil
}

func load(ctx context.Context, carts *repos.CartRepo, coupons *repos.CouponRepo, id string) (*domain.Cart, error) {
	c, err := carts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Items, err = carts.Items(ctx, id); err != nil {
		return nil, err
	}
	if c.CouponID.Valid {
		cp, err := coupons.ByID(ctx, c.CouponID.Int64)
		switch {
		case err == nil:
			c.Coupon = &cp
		case !repos.IsNotFound(err):
			return nil, err
		}
	}
	return &c, nil
}

func (s *CartService) product(ctx context.Context, slug string) (domain.Product, error) {
	p, err := s.Prods.BySlug(ctx, slug)
	if repos.IsNotFound(err) {
		return p, domain.ErrProductNotFound
	}
	return p, err
}

// Add puts quantity units of the product in the cart. It reports whether a
// new line was created. Incrementing an existing line past the product's
// stock writes nothing and fails with a stock error.
func (s *CartService) Add(ctx context.Context, sess Session, productSlug string, quantity int) (created bool, err error) {
	if quantity < 1 {
		quantity = 1
	}
	cart, err := s.GetOrCreate(ctx, sess)
	if err != nil {
		return false, err
	}
	p, err := s.product(ctx, productSlug)
	if err != nil {
		return false, err
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := s.Carts.Tx(tx)
		cur, err := carts.ItemQuantity(ctx, cart.ID, p.ID)
		if repos.IsNotFound(err) {
			created = true
			return carts.InsertItem(ctx, cart.ID, p.ID, quantity)
		}
		if err != nil {
			return err
		}
		if cur+quantity > p.Quantity {
			return domain.StockExceeded(p)
		}
		return carts.SetQuantity(ctx, cart.ID, p.ID, cur+quantity)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// Increase adds one unit, refusing to go past the product's stock.
func (s *CartService) Increase(ctx context.Context, sess Session, productSlug string) error {
	return s.step(ctx, sess, productSlug, +1)
}

// Decrease removes one unit, refusing to go below one. Stock is not
// checked, so a line above current stock can still shrink.
func (s *CartService) Decrease(ctx context.Context, sess Session, productSlug string) error {
	return s.step(ctx, sess, productSlug, -1)
}

func (s *CartService) step(ctx context.Context, sess Session, productSlug string, delta int) error {
	cart, err := s.GetOrCreate(ctx, sess)
	if err != nil {
		return err
	}
	p, err := s.product(ctx, productSlug)
	if err != nil {
		return err
	}
	return repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := s.Carts.Tx(tx)
		cur, err := carts.ItemQuantity(ctx, cart.ID, p.ID)
		if repos.IsNotFound(err) {
			return domain.ErrCartItemNotFound
		}
		if err != nil {
			return err
		}
		next := cur + delta
		if delta > 0 && next > p.Quantity {
			return domain.StockCeiling(p)
		}
		if next < 1 {
			return domain.QuantityFloor(p)
		}
		return carts.SetQuantity(ctx, cart.ID, p.ID, next)
	})
}

// Remove deletes the product's line from the cart.
func (s *CartService) Remove(ctx context.Context, sess Session, productSlug string) (domain.Product, error) {
	cart, err := s.GetOrCreate(ctx, sess)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := s.product(ctx, productSlug)
	if err != nil {
		return p, err
	}
	ok, err := s.Carts.DeleteItem(ctx, cart.ID, p.ID)
	if err != nil {
		return p, err
	}
	if !ok {
		return p, domain.ErrCartItemNotFound
	}
	return p, nil
}

// Product returns the product behind a slug, for user messages.
func (s *CartService) Product(ctx context.Context, productSlug string) (domain.Product, error) {
	return s.product(ctx, productSlug)
}

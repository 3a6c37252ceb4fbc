package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// CustomerFields is the checkout form.
type CustomerFields struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"max=100"`
	Email     string `form:"email" validate:"required,email"`
	Address   string `form:"address" validate:"required,max=256"`
	Country   string `form:"country" validate:"required,max=100"`
	ZipCode   string `form:"zip_code" validate:"required,max=20"`
}

type OrderService struct {
	DB      *sqlx.DB
	Carts   *CartService
	Orders  *repos.OrderRepo
	Coupons *repos.CouponRepo
	Queue   notify.Queue
	Log     *zap.Logger
	Clock   func() time.Time
}

func NewOrderService(db *sqlx.DB, carts *CartService, orders *repos.OrderRepo, coupons *repos.CouponRepo, q notify.Queue, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{DB: db, Carts: carts, Orders: orders, Coupons: coupons, Queue: q, Log: log, Clock: time.Now}
}

// Create turns the session's cart into a pending order. The order, its item
// snapshots, the coupon usage and the emptied cart are written together.
// The notification is queued only after commit; a queue failure is logged
// and does not undo the order.
func (s *OrderService) Create(ctx context.Context, sess Session, in CustomerFields) (domain.Order, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Order{}, err
	}
	cart, err := s.Carts.GetOrCreate(ctx, sess)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:        domain.NewOrderID(s.Clock()),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Address:   in.Address,
		Country:   in.Country,
		ZipCode:   in.ZipCode,
		Status:    domain.StatusPending,
	}

	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := s.Carts.Carts.Tx(tx)
		coupons := s.Coupons.Tx(tx)
		orders := s.Orders.Tx(tx)

		// re-read inside the transaction so the snapshot matches what is cleared
		current, err := load(ctx, carts, coupons, cart.ID)
		if err != nil {
			return err
		}
		if current.Coupon != nil {
			order.CouponCode = current.Coupon.Code
			order.Discount = current.Discount()
		}
		if err := orders.Create(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.Items = make([]domain.OrderItem, 0, len(current.Items))
		for _, it := range current.Items {
			oi := domain.OrderItem{
				OrderID:     order.ID,
				ProductID:   it.Product.ID,
				ProductName: it.Product.Name,
				Price:       it.Product.Price,
				Quantity:    it.Quantity,
			}
			if err := orders.InsertItem(ctx, &oi); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			order.Items = append(order.Items, oi)
		}
		if current.Coupon != nil {
			if err := coupons.IncrementUsage(ctx, current.Coupon.ID); err != nil {
				return err
			}
		}
		if err := carts.Clear(ctx, cart.ID); err != nil {
			return err
		}
		return carts.SetCoupon(ctx, cart.ID, sql.NullInt64{})
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.Queue != nil {
		if err := s.Queue.Enqueue(ctx, notify.Job{Kind: notify.KindOrderCreated, OrderID: order.ID}); err != nil {
			s.Log.Error("order.notify.enqueue", zap.Error(err), zap.String("order_id", order.ID))
		}
	}
	sess.Set(SessionOrderID, order.ID)
	placed, _ := sess.Get(SessionPlacedOrders).([]string)
	placed = append(placed, order.ID)
	if len(placed) > maxPlacedOrders {
		placed = placed[len(placed)-maxPlacedOrders:]
	}
	sess.Set(SessionPlacedOrders, placed)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if repos.IsNotFound(err) {
		return o, domain.ErrOrderNotFound
	}
	return o, err
}

// Current returns the order most recently placed in this session.
func (s *OrderService) Current(ctx context.Context, sess Session) (domain.Order, error) {
	id, _ := sess.Get(SessionOrderID).(string)
	if id == "" {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return s.Get(ctx, id)
}

// PlacedInSession reports whether the order was placed from this session.
func (s *OrderService) PlacedInSession(sess Session, id string) bool {
	placed, _ := sess.Get(SessionPlacedOrders).([]string)
	for _, p := range placed {
		if p == id {
			return true
		}
	}
	return false
}

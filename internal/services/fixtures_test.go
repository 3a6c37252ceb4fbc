package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// memSession stands in for the HTTP session.
type memSession map[string]any

func (m memSession) Get(key string) any      { return m[key] }
func (m memSession) Set(key string, val any) { m[key] = val }
func (m memSession) Delete(key string)       { delete(m, key) }

type fakeQueue struct {
	mu   sync.Mutex
	jobs []notify.Job
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job notify.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fixture struct {
	ctx context.Context
	db  *sqlx.DB

	products *repos.ProductRepo
	coupons  *repos.CouponRepo
	orders   *repos.OrderRepo

	catalog *services.CatalogService
	cart    *services.CartService
	coupon  *services.CouponService
	order   *services.OrderService
	queue   *fakeQueue

	category domain.Category
	brand    domain.Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		products: repos.NewProductRepo(db),
		coupons:  repos.NewCouponRepo(db),
		orders:   repos.NewOrderRepo(db),
		queue:    &fakeQueue{},
	}
	carts := repos.NewCartRepo(db)
	f.catalog = services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewBrandRepo(db), f.products)
	f.cart = services.NewCartService(db, carts, f.products, f.coupons)
	f.coupon = services.NewCouponService(f.cart, f.coupons)
	f.order = services.NewOrderService(db, f.cart, f.orders, f.coupons, f.queue, zap.NewNop())

	f.category, err = repos.NewCategoryRepo(db).Create(f.ctx, "Test")
	require.NoError(t, err)
	f.brand, err = repos.NewBrandRepo(db).Create(f.ctx, "Acme")
	require.NoError(t, err)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{
		Name:       name,
		CategoryID: f.category.ID,
		BrandID:    f.brand.ID,
		Quantity:   stock,
		Condition:  domain.ConditionNew,
		Price:      decimal.RequireFromString(price),
		Available:  true,
	}
	require.NoError(t, f.products.Create(f.ctx, &p))
	return p
}

func (f *fixture) couponWith(t *testing.T, c domain.Coupon) domain.Coupon {
	t.Helper()
	if c.ValidFrom.IsZero() {
		c.ValidFrom = domain.NewTimestamp(time.Now().AddDate(0, 0, -1))
	}
	if c.ValidTo.IsZero() {
		c.ValidTo = domain.NewTimestamp(time.Now().AddDate(0, 0, 1))
	}
	require.NoError(t, f.coupons.Create(f.ctx, &c))
	return c
}

func customer() services.CustomerFields {
	return services.CustomerFields{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Address:   "12 Analytical St",
		Country:   "UK",
		ZipCode:   "N1 9GU",
	}
}

func money(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}

package handlers

import (
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	CatalogHandler   *CatalogHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	CouponHandler    *CouponHandler
	OrderHandler     *OrderHandler
	PaymentHandler   *PaymentHandler

	Sessions *session.Store
	MediaDir string
}

func NewDeps(db *sqlx.DB, cfg config.Config, store *session.Store, q notify.Queue, proc payment.Processor, log *zap.Logger) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	brandRepo := repos.NewBrandRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	couponRepo := repos.NewCouponRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, brandRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(db, cartRepo, prodRepo, couponRepo)
	couponSvc := services.NewCouponService(cartSvc, couponRepo)
	orderSvc := services.NewOrderService(db, cartSvc, orderRepo, couponRepo, q, log)
	paySvc := services.NewPaymentService(orderSvc, proc, log)

	sigHeader := payment.SignatureHeader
	if cfg.PaymentProvider == "stripe" {
		sigHeader = payment.StripeSignatureHeader
	}

	return &Deps{
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		CartHandler:      &CartHandler{Cart: cartSvc},
		CouponHandler:    &CouponHandler{Coupons: couponSvc},
		OrderHandler:     &OrderHandler{Cart: cartSvc, Order: orderSvc},
		PaymentHandler: &PaymentHandler{
			Payment:         paySvc,
			Order:           orderSvc,
			BaseURL:         cfg.BaseURL,
			SignatureHeader: sigHeader,
		},

		Sessions: store,
		MediaDir: cfg.MediaDir,
	}
}

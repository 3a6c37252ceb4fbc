package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers, and every :memory: connection is its own
	// database, so the pool is pinned to one connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog and coupons if DB is empty
	if err := seedIfEmpty(context.Background(), db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Taxonomy
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name);

CREATE TABLE IF NOT EXISTS brands(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_brands_name ON brands(name);

-- Products (price is decimal text)
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  brand_id INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  description TEXT,
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 0),
  condition TEXT NOT NULL CHECK (condition IN ('new','used','refurbished')),
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  slug TEXT NOT NULL UNIQUE,
  available INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_brand      ON products(brand_id);

CREATE TABLE IF NOT EXISTS product_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  alt_text TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);

-- Coupons
CREATE TABLE IF NOT EXISTS coupons(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL,
  discount_type TEXT NOT NULL CHECK (discount_type IN ('percentage','fixed')),
  value TEXT NOT NULL,
  valid_from TEXT NOT NULL,
  valid_to TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  max_usage INTEGER NOT NULL DEFAULT 0,
  used_count INTEGER NOT NULL DEFAULT 0,
  CHECK (valid_from <= valid_to)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_nocase ON coupons(LOWER(code));

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  coupon_id INTEGER NULL REFERENCES coupons(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY (cart_id, product_id)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,               -- ORD-<timestamp>-<hex>
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL,
  address TEXT NOT NULL,
  country TEXT NOT NULL,
  zip_code TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','successful','failed','delivering')),
  coupon_code TEXT NOT NULL DEFAULT '',
  discount TEXT NOT NULL DEFAULT '0',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1)
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.catalog", zap.String("reason", "empty database"))

	return InTx(ctx, db, func(tx *sqlx.Tx) error {
		cats := NewCategoryRepo(db).Tx(tx)
		brands := NewBrandRepo(db).Tx(tx)
		prods := NewProductRepo(db).Tx(tx)
		coupons := NewCouponRepo(db).Tx(tx)

		consoles, err := cats.Create(ctx, "Retro Consoles")
		if err != nil {
			return err
		}
		radios, err := cats.Create(ctx, "Vintage Radios")
		if err != nil {
			return err
		}
		nintendo, err := brands.Create(ctx, "Nintendo")
		if err != nil {
			return err
		}
		zenith, err := brands.Create(ctx, "Zenith")
		if err != nil {
			return err
		}

		seed := []domain.Product{
			{Name: "Game Boy Color", CategoryID: consoles.ID, BrandID: nintendo.ID, Description: "Handheld console",
				Quantity: 8, Condition: domain.ConditionUsed, Price: decimal.RequireFromString("129.99"), Available: true},
			{Name: "NES Console", CategoryID: consoles.ID, BrandID: nintendo.ID, Description: "Classic 8-bit console",
				Quantity: 5, Condition: domain.ConditionRefurbished, Price: decimal.RequireFromString("199.00"), Available: true},
			{Name: "Super Nintendo (SNES) Console", CategoryID: consoles.ID, BrandID: nintendo.ID,
				Description: "16-bit console with controller. Tested and cleaned.",
				Quantity: 3, Condition: domain.ConditionUsed, Price: decimal.RequireFromString("189.00"), Available: true},
			{Name: "Zenith Royal 500 Transistor Radio", CategoryID: radios.ID, BrandID: zenith.ID,
				Description: "Iconic vintage pocket radio. Works with a 9V battery.",
				Quantity: 2, Condition: domain.ConditionUsed, Price: decimal.RequireFromString("89.00"), Available: true},
		}
		for i := range seed {
			if err := prods.Create(ctx, &seed[i]); err != nil {
				return err
			}
			if _, err := prods.AddImage(ctx, seed[i], "main.jpg", ""); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, c := range []domain.Coupon{
			{Code: "SAVE10", DiscountType: domain.DiscountPercentage, Value: decimal.NewFromInt(10),
				ValidFrom: domain.NewTimestamp(now.AddDate(0, -1, 0)), ValidTo: domain.NewTimestamp(now.AddDate(1, 0, 0)), Active: true},
			{Code: "WELCOME20", DiscountType: domain.DiscountFixed, Value: decimal.NewFromInt(20),
				ValidFrom: domain.NewTimestamp(now.AddDate(0, -1, 0)), ValidTo: domain.NewTimestamp(now.AddDate(1, 0, 0)), Active: true, MaxUsage: 100},
		} {
			c := c
			if err := coupons.Create(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
}

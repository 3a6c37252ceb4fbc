package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/session"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	var extra []string
	if cfg.LogFile != "" {
		extra = append(extra, cfg.LogFile)
	}
	zl, err := applog.New(cfg.Production(), extra...)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	applog.SetLogger(zl)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		zl.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is only dialed when a backend asks for it
	var rdb *redis.Client
	if cfg.SessionBackend == "redis" || cfg.NotifyBackend == "redis" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("redis.ping", zap.Error(err), zap.String("addr", cfg.RedisAddr))
		}
	}

	// Notifications
	var mailer notify.Mailer = notify.LogMailer{Log: zl.Named("mail")}
	if cfg.SMTPAddr != "" {
		mailer = notify.SMTPMailer{Addr: cfg.SMTPAddr, User: cfg.SMTPUser, Password: cfg.SMTPPassword}
	}
	onJob := notify.OrderCreatedHandler(repos.NewOrderRepo(db), mailer, cfg.MailFrom)
	var queue notify.Queue
	var memQueue *notify.MemoryQueue
	switch cfg.NotifyBackend {
	case "redis":
		q := notify.NewRedisQueue(rdb, notify.DefaultRedisKey, zl.Named("notify"))
		q.Start(ctx, cfg.NotifyWorkers, onJob)
		queue = q
	default:
		q := notify.NewMemoryQueue(256, zl.Named("notify"))
		q.Start(ctx, cfg.NotifyWorkers, onJob)
		memQueue, queue = q, q
	}

	// Payment processor
	var proc payment.Processor
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
			zl.Fatal("payment.config", zap.String("reason", "STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required"))
		}
		proc = payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	default:
		proc = payment.NewSandbox(cfg.SandboxSecret)
	}

	// Sessions
	var storage fiber.Storage
	if cfg.SessionBackend == "redis" {
		storage = session.NewRedisStorage(rdb, "")
	}
	store := handlers.NewSessionStore(storage, cfg.Production())

	// Templates & app
	engine := handlers.NewEngine(cfg.TemplateDir)
	engine.Reload(!cfg.Production())

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20, // 1 MiB
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/") || p == "/payment/webhook"
		},
	}))
	app.Use(csrf.New(handlers.CSRFConfig(cfg.Production())))
	app.Use(handlers.Sessions(store))

	// ---------- Static assets ----------
	zl.Info("static.mount", zap.String("static", "./web/static"), zap.String("media", cfg.MediaDir))
	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, store, queue, proc, zl)
	handlers.Register(app, deps)

	if low, err := services.NewInventoryService(repos.NewInventoryRepo(db)).LowStock(ctx); err == nil && len(low) > 0 {
		names := make([]string, 0, len(low))
		for _, r := range low {
			names = append(names, r.Name)
		}
		zl.Warn("inventory.low", zap.Strings("products", names))
	}

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zl.Info("server.start", zap.String("port", cfg.Port), zap.String("payment", cfg.PaymentProvider))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server.stop", zap.Error(err))
	}
	stop()
	if memQueue != nil {
		memQueue.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

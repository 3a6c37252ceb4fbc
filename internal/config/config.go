package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	BaseURL     string
	DBDSN       string
	MediaDir    string
	TemplateDir string
	LogFile     string

	SessionBackend string // memory | redis
	NotifyBackend  string // memory | redis
	NotifyWorkers  int
	RedisAddr      string
	RedisPassword  string

	MailFrom     string
	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string

	PaymentProvider     string // sandbox | stripe
	SandboxSecret       string
	StripeSecretKey     string
	StripeWebhookSecret string
}

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using process environment")
	}

	port := getenv("PORT", "8081")
	workers, err := strconv.Atoi(getenv("NOTIFY_WORKERS", "2"))
	if err != nil || workers < 1 {
		workers = 2
	}

	cfg := Config{
		Port:        port,
		Env:         getenv("APP_ENV", "development"),
		BaseURL:     getenv("BASE_URL", "http://localhost:"+port),
		DBDSN:       getenv("DB_DSN", "storefront.db"), // sqlite file in project root
		MediaDir:    getenv("MEDIA_DIR", "./web/media"),
		TemplateDir: getenv("TEMPLATE_DIR", "./web/templates"),
		LogFile:     os.Getenv("LOG_FILE"),

		SessionBackend: getenv("SESSION_BACKEND", "memory"),
		NotifyBackend:  getenv("NOTIFY_BACKEND", "memory"),
		NotifyWorkers:  workers,
		RedisAddr:      getenv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),

		MailFrom:     getenv("MAIL_FROM", "admin@website.com"),
		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		PaymentProvider:     getenv("PAYMENT_PROVIDER", "sandbox"),
		SandboxSecret:       getenv("SANDBOX_SECRET", "sandbox-dev-secret"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	log.Printf("[config] PORT=%s APP_ENV=%s DB_DSN=%s SESSION_BACKEND=%s NOTIFY_BACKEND=%s PAYMENT_PROVIDER=%s",
		cfg.Port, cfg.Env, cfg.DBDSN, cfg.SessionBackend, cfg.NotifyBackend, cfg.PaymentProvider)
	return cfg
}

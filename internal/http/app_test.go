package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/notify"
	"storefront/internal/payment"
	"storefront/internal/repos"
)

const sandboxSecret = "test-secret"

// recordingQueue keeps every job instead of running it.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []notify.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job notify.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Jobs() []notify.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]notify.Job(nil), q.jobs...)
}

type testApp struct {
	app     *fiber.App
	db      *sqlx.DB
	sandbox *payment.Sandbox
	queue   *recordingQueue

	category domain.Category
	brand    domain.Brand
}

// newTestApp wires the real routes the way cmd/storefront does, against a
// fresh in-memory database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Config{
		DBDSN:           ":memory:",
		MediaDir:        "../../web/media",
		BaseURL:         "http://shop.test",
		PaymentProvider: "sandbox",
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})
	app.Use(requestid.New())
	app.Use(csrf.New(handlers.CSRFConfig(false)))
	store := handlers.NewSessionStore(nil, false)
	app.Use(handlers.Sessions(store))

	sandbox := payment.NewSandbox(sandboxSecret)
	q := &recordingQueue{}
	handlers.Register(app, handlers.NewDeps(db, cfg, store, q, sandbox, zap.NewNop()))

	ta := &testApp{app: app, db: db, sandbox: sandbox, queue: q}
	if ta.category, err = repos.NewCategoryRepo(db).Create(context.Background(), "Test"); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if ta.brand, err = repos.NewBrandRepo(db).Create(context.Background(), "Acme"); err != nil {
		t.Fatalf("create brand: %v", err)
	}
	return ta
}

// addProduct creates an available product under category "Test" and brand
// "Acme", so its URL is /products/test/acme/<slug>.
func (a *testApp) addProduct(t *testing.T, name, price string, stock int) domain.Product {
	t.Helper()
	p := domain.Product{
		Name:       name,
		CategoryID: a.category.ID,
		BrandID:    a.brand.ID,
		Quantity:   stock,
		Condition:  domain.ConditionNew,
		Price:      decimal.RequireFromString(price),
		Available:  true,
	}
	if err := repos.NewProductRepo(a.db).Create(context.Background(), &p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// browser carries cookies between requests like a real client.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, val := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: val})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(httptest.NewRequest("GET", path, nil))
}

func (b *browser) htmxGet(path string) *http.Response {
	req := httptest.NewRequest("GET", path, nil)
	req.Header.Set("HX-Request", "true")
	return b.do(req)
}

// csrfToken returns the token cookie, fetching a page first if needed.
func (b *browser) csrfToken() string {
	if b.cookies["csrf_"] == "" {
		b.get("/healthz")
	}
	tok := b.cookies["csrf_"]
	if tok == "" {
		b.t.Fatalf("no csrf cookie issued")
	}
	return tok
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (b *browser) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.csrfToken())
	return b.do(newFormRequest(path, form))
}

// htmxPost sends the token in the header, as the layout's hx-headers does.
func (b *browser) htmxPost(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	req := newFormRequest(path, form)
	req.Header.Set("HX-Request", "true")
	req.Header.Set(handlers.HeaderCSRF, b.csrfToken())
	return b.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

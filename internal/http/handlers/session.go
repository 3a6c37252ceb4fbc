package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

const (
	sessionLocal = "session"
	flashKey     = "flashes"
)

// Flash is a one-shot message shown on the next rendered page or fragment.
type Flash struct {
	Level   string // success | error
	Message string
}

// NewSessionStore builds the session store. A nil storage keeps sessions in
// memory.
func NewSessionStore(storage fiber.Storage, secure bool) *session.Store {
	store := session.New(session.Config{
		Expiration:     24 * time.Hour,
		Storage:        storage,
		KeyLookup:      "cookie:sid",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   secure,
	})
	store.RegisterType([]Flash{})
	store.RegisterType([]string{})
	return store
}

// Sessions loads the visitor's session before the handler runs and saves it
// afterwards.
func Sessions(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			applog.Error(c, "session.load", err, nil)
			return err
		}
		c.Locals(sessionLocal, sess)
		err = c.Next()
		if serr := sess.Save(); serr != nil {
			applog.Error(c, "session.save", serr, nil)
			if err == nil {
				err = serr
			}
		}
		return err
	}
}

func sessionOf(c *fiber.Ctx) services.Session {
	sess, _ := c.Locals(sessionLocal).(*session.Session)
	if sess == nil {
		// routes mounted without the middleware still get a working, throwaway session
		return mapSession{}
	}
	return sess
}

type mapSession map[string]any

func (m mapSession) Get(key string) any      { return m[key] }
func (m mapSession) Set(key string, val any) { m[key] = val }
func (m mapSession) Delete(key string)       { delete(m, key) }

func addFlash(c *fiber.Ctx, level, msg string) {
	sess := sessionOf(c)
	flashes, _ := sess.Get(flashKey).([]Flash)
	sess.Set(flashKey, append(flashes, Flash{Level: level, Message: msg}))
}

func popFlashes(c *fiber.Ctx) []Flash {
	sess := sessionOf(c)
	flashes, _ := sess.Get(flashKey).([]Flash)
	if len(flashes) > 0 {
		sess.Delete(flashKey)
	}
	return flashes
}

package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/finance-tracker/internal/config"
)

const sessionIDKey = "session_id"

// Manager binds the ticket store to the session cookie carried by each
// request.
type Manager struct {
	store *Store
	cfg   config.SessionConfig
}

// NewManager constructs a manager.
func NewManager(store *Store, cfg config.SessionConfig) *Manager {
	return &Manager{store: store, cfg: cfg}
}

// Store exposes the underlying ticket store.
func (m *Manager) Store() *Store {
	return m.store
}

// Middleware ensures every request carries a session ID cookie, minting one
// when absent.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(m.cfg.CookieName)
		if id == "" {
			id = uuid.NewString()
			m.setCookie(c, id)
		}
		c.Locals(sessionIDKey, id)
		return c.Next()
	}
}

// ID returns the session ID attached to the request.
func ID(c *fiber.Ctx) string {
	if id, ok := c.Locals(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// Regenerate rotates the session ID while keeping session state, matching
// the post-login session fixation protection of the credential flows.
func (m *Manager) Regenerate(c *fiber.Ctx) (string, error) {
	oldID := ID(c)
	newID := uuid.NewString()
	if oldID != "" {
		if err := m.store.Rename(c.UserContext(), oldID, newID); err != nil {
			return "", err
		}
	}
	c.Locals(sessionIDKey, newID)
	m.setCookie(c, newID)
	return newID, nil
}

// Invalidate destroys all session state and issues a fresh session ID.
func (m *Manager) Invalidate(c *fiber.Ctx) error {
	if id := ID(c); id != "" {
		if err := m.store.Destroy(c.UserContext(), id); err != nil {
			return err
		}
	}
	newID := uuid.NewString()
	c.Locals(sessionIDKey, newID)
	m.setCookie(c, newID)
	return nil
}

func (m *Manager) setCookie(c *fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Expires:  time.Now().Add(m.cfg.TTL()),
		HTTPOnly: m.cfg.CookieHTTPOnly,
		Secure:   m.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionCookie = "screener_session"

// SessionMiddleware makes sure every request carries a session id cookie.
func SessionMiddleware(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(sessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(ttl),
		})
		c.Locals(sessionCookie, id)

		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(sessionCookie).(string); ok {
		return id
	}
	return ""
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/internal/pkg/session"
	"github.com/fanvault/fanvault/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// from the web session. This centralizes session handling so controllers
// only ever read usercontext.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth uses its own fiber session store on the OAuth routes; we skip
	// our app session there to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	sess, err := store.Get(c)
	if err != nil {
		// On error: treat as anonymous
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	username, _ := sess.Get(usercontext.KeyUsername).(string)
	role, _ := sess.Get(usercontext.KeyRole).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     userID.(uint),
		Username:   username,
		Role:       role,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
	})

	return c.Next()
}

package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/internal/pkg/accesscode"
	"github.com/fanvault/fanvault/internal/pkg/usercontext"
)

// AccessCodeAuth authenticates requests carrying a creator access code. A
// request that already holds a logged-in session passes through untouched;
// otherwise the code is extracted (body field, X-Access-Code header, bearer
// authorization, in that order) and resolved to the creator owning it.
func AccessCodeAuth(resolver *accesscode.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if usercontext.IsLoggedIn(c) {
			return c.Next()
		}

		code := accesscode.ExtractCode(c)
		user, err := resolver.Resolve(code)
		if err != nil {
			if errors.Is(err, accesscode.ErrUnauthenticated) {
				message := "Invalid access code"
				if code == "" {
					message = "Access code missing"
				}
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":   "unauthorized",
					"message": message,
				})
			}
			log.Printf("access code lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "internal_server_error",
				"message": "Access code verification failed",
			})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     user.ID,
			Username:   user.FullName,
			Role:       user.Role,
			IsLoggedIn: true,
			IsAdmin:    user.Role == models.ROLE_ADMIN,
		})

		return c.Next()
	}
}

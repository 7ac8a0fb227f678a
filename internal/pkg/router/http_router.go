package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/controllers"
	"github.com/fanvault/fanvault/internal/pkg/constants"
	"github.com/fanvault/fanvault/internal/pkg/middleware"
	"github.com/fanvault/fanvault/internal/pkg/oauth"
	"github.com/fanvault/fanvault/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Logout before the :provider wildcard so it is not captured as a
	// provider name.
	auth := app.Group(constants.AuthRoute)
	auth.Get("/logout", controllers.HandleOAuthLogout)
	auth.Get("/:provider", controllers.HandleOAuthLogin)
	auth.Get("/:provider/callback", controllers.HandleOAuthCallback)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

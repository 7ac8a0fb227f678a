package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/fanvault/fanvault/app/controllers"
	"github.com/fanvault/fanvault/app/repository"
	"github.com/fanvault/fanvault/internal/pkg/accesscode"
	"github.com/fanvault/fanvault/internal/pkg/constants"
	"github.com/fanvault/fanvault/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{Max: 120}))

	// Public endpoints
	api.Post("/login", controllers.HandleAPILogin)
	api.Post("/logout", controllers.HandleAPILogout)
	api.Post("/creator/signup", controllers.HandleCreatorSignup)
	api.Post("/admin/signup", controllers.HandleAdminSignup)
	api.Post("/fan/access", controllers.HandleFanAccess)

	// Session-only endpoints
	api.Get("/creators/:id/content", middleware.RequireAPISessionAuth, controllers.HandleGetCreatorContent)
	api.Post("/creators/:id/content", middleware.RequireAPISessionAuth, controllers.HandleCreateCreatorContent)

	// Listing cards stays session-only; the access-code credential covers
	// only the mutating card operations below. Registered before the group
	// so its middleware does not apply here.
	api.Get(constants.CardsRoute, middleware.RequireAPISessionAuth, controllers.HandleListCards)

	// Mutating card endpoints accept either a logged-in session or a
	// creator access code.
	resolver := accesscode.NewResolver(repository.GetGlobalRepositories().CreatorProfile)
	cards := api.Group(constants.CardsRoute, middleware.AccessCodeAuth(resolver))
	cards.Post("/", controllers.HandleCreateCard)
	cards.Get("/:id", controllers.HandleGetCard)
	cards.Patch("/:id", controllers.HandleUpdateCard)
	cards.Delete("/:id", controllers.HandleDeleteCard)
	cards.Post("/:id/set-default", controllers.HandleSetDefaultCard)

	// Admin endpoints
	admin := api.Group(constants.AdminRoute, middleware.RequireAPIAdmin)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/creators", controllers.HandleAdminListCreators)
	admin.Get("/stats", controllers.HandleAdminStats)
	admin.Get("/credit-cards", controllers.HandleAdminListCreditCards)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

package constants

// Static route constants
const (
	APIRoute   = "/api"
	CardsRoute = "/cards"
	AdminRoute = "/admin"
	AuthRoute  = "/auth"
)

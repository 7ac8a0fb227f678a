package accesscode

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
)

// ProfileStore looks up a creator profile by its exact access code. The
// returned profile carries its linked user.
type ProfileStore interface {
	GetByAccessCode(code string) (*models.CreatorProfile, error)
}

// Resolver maps a presented access code to the creator user owning it.
type Resolver struct {
	profiles ProfileStore
}

func NewResolver(profiles ProfileStore) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve trims the code and resolves it against the unique access-code
// index. An empty code, an unknown code, or an inactive creator all yield
// ErrUnauthenticated.
func (r *Resolver) Resolve(code string) (*models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := r.profiles.GetByAccessCode(code)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.User.IsActive() {
		return nil, ErrUnauthenticated
	}
	user := profile.User
	return &user, nil
}

// ExtractCode pulls the access code from the request, checking the JSON
// body field first, then the X-Access-Code header, then a bearer
// authorization header. Returns "" when none carries a code.
func ExtractCode(c *fiber.Ctx) string {
	if len(c.Body()) > 0 {
		var body struct {
			AccessCode string `json:"access_code"`
		}
		if err := c.BodyParser(&body); err == nil {
			if code := strings.TrimSpace(body.AccessCode); code != "" {
				return code
			}
		}
	}
	if code := strings.TrimSpace(c.Get("X-Access-Code")); code != "" {
		return code
	}
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) >= 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

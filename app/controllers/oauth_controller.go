package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/app/repository"
	"github.com/fanvault/fanvault/internal/pkg/database"
)

// HandleOAuthLogin starts the provider flow for /auth/:provider.
func HandleOAuthLogin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in.
// OAuth sign-ins always land on the customer role; creators and admins
// use password login.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "OAuth authentication failed")
	}

	db := database.GetDB()
	repos := repository.GetGlobalRepositories()

	var pa models.ProviderAccount
	found := true
	if err := db.Where("provider = ? AND provider_user_id = ?", u.Provider, u.UserID).First(&pa).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
		}
		found = false
	}

	var appUser *models.User
	if found {
		pa.AccessToken = u.AccessToken
		pa.RefreshToken = u.RefreshToken
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			pa.ExpiresAt = &t
		} else {
			pa.ExpiresAt = nil
		}
		if err := db.Save(&pa).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update provider link")
		}
		appUser, err = repos.User.GetByID(pa.UserID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
		}
		if appUser == nil {
			// The linked user is gone; drop the dangling link and fall
			// through to re-link the provider identity.
			if err := db.Delete(&pa).Error; err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
			}
			found = false
		}
	}
	if !found {
		// Match by email when the provider shares one, otherwise create
		// a fresh customer account.
		if u.Email != "" {
			appUser, err = repos.User.GetByEmail(u.Email)
			if err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
			}
		}
		if appUser == nil {
			// Placeholder password; these accounts never log in with one.
			placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
			email := u.Email
			if email == "" {
				email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
			}
			appUser, err = models.CreateUser(firstNonEmpty(u.Name, u.NickName, u.Email, "Customer"), email, placeholder, models.ROLE_CUSTOMER)
			if err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
			}
			if err := repos.User.Create(appUser); err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "OAuth sign-in failed")
			}
		}

		var exp *time.Time
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			exp = &t
		}
		pa = models.ProviderAccount{
			UserID:         appUser.ID,
			Provider:       u.Provider,
			ProviderUserID: u.UserID,
			AccessToken:    u.AccessToken,
			RefreshToken:   u.RefreshToken,
			ExpiresAt:      exp,
		}
		if err := db.Create(&pa).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to link provider account")
		}
	}

	if !appUser.IsActive() {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Account is inactive")
	}

	if err := createUserSession(c, appUser); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session could not be created")
	}

	now := time.Now()
	appUser.LastLoginAt = &now
	_ = repos.User.Update(appUser)

	return c.JSON(fiber.Map{
		"user_id":   appUser.ID,
		"full_name": appUser.FullName,
		"email":     appUser.Email,
		"role":      appUser.Role,
	})
}

// HandleOAuthLogout clears the provider session alongside the app session.
func HandleOAuthLogout(c *fiber.Ctx) error {
	if err := gothfiber.Logout(c); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Logout failed")
	}
	return HandleAPILogout(c)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

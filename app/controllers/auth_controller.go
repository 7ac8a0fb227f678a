package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/app/repository"
	"github.com/fanvault/fanvault/internal/pkg/accesscode"
	"github.com/fanvault/fanvault/internal/pkg/session"
	"github.com/fanvault/fanvault/internal/pkg/usercontext"
	"github.com/fanvault/fanvault/internal/pkg/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// HandleAPILogin authenticates an email/password pair and opens a session.
// Password login is restricted to creators and admins; fans authenticate
// with an access code instead.
func HandleAPILogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		log.Printf("login lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Login failed")
	}
	if user == nil || !user.CheckPassword(req.Password) || !user.IsActive() {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid credentials")
	}
	if user.Role != models.ROLE_ADMIN && user.Role != models.ROLE_CREATOR {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Login restricted to creators and admins")
	}

	if err := createUserSession(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session could not be created")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"user_id":   user.ID,
		"full_name": user.FullName,
		"email":     user.Email,
		"role":      user.Role,
	})
}

// HandleAPILogout destroys the caller's session.
func HandleAPILogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return c.JSON(fiber.Map{"message": "logged out"})
	}
	sess, err := store.Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// HandleCreatorSignup registers a creator account together with its profile
// and freshly generated access code.
func HandleCreatorSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	existing, err := repos.User.GetByEmail(req.Email)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}
	if existing != nil {
		return jsonFieldErrors(c, models.FieldErrors{"email": "Email is already registered."})
	}

	user, err := models.CreateUser(req.FullName, req.Email, req.Password, models.ROLE_CREATOR)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	if err := repos.User.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}

	code, err := accesscode.Generate(user.FullName, repos.CreatorProfile.AccessCodeExists)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Access code generation failed")
	}

	profile := &models.CreatorProfile{
		UserID:     user.ID,
		AccessCode: code,
		Bio:        req.Bio,
		AvatarURL:  req.AvatarURL,
	}
	if err := repos.CreatorProfile.Create(profile); err != nil {
		// Roll the half-created account back so the email is reusable.
		if delErr := repos.User.Delete(user.ID); delErr != nil {
			log.Printf("failed to clean up user %d after profile error: %v", user.ID, delErr)
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Creator account created successfully!",
		"access_code": profile.AccessCode,
		"full_name":   user.FullName,
		"email":       user.Email,
		"avatar_url":  creatorAvatarURL(profile, user),
	})
}

// HandleAdminSignup registers an admin account and logs it in.
func HandleAdminSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	existing, err := repo.GetByEmail(req.Email)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}
	if existing != nil {
		return jsonFieldErrors(c, models.FieldErrors{"email": "Email is already registered."})
	}

	user, err := models.CreateUser(req.FullName, req.Email, req.Password, models.ROLE_ADMIN)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	if err := repo.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Signup failed")
	}

	if err := createUserSession(c, user); err != nil {
		log.Printf("session creation after admin signup failed: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Admin account created successfully!",
		"user_id":   user.ID,
		"full_name": user.FullName,
		"email":     user.Email,
		"role":      user.Role,
	})
}

// createUserSession stores the authenticated user in the web session.
func createUserSession(c *fiber.Ctx, user *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return fiber.ErrInternalServerError
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.FullName)
	sess.Set(usercontext.KeyRole, user.Role)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	return sess.Save()
}

// creatorAvatarURL falls back to a Gravatar when the profile carries no
// explicit avatar.
func creatorAvatarURL(profile *models.CreatorProfile, user *models.User) string {
	if profile.AvatarURL != "" {
		return profile.AvatarURL
	}
	return utils.GetGravatarURL(user.Email, 200)
}

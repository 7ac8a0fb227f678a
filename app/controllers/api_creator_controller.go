package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/app/repository"
	"github.com/fanvault/fanvault/internal/pkg/accesscode"
	"github.com/fanvault/fanvault/internal/pkg/metrics/counter"
	"github.com/fanvault/fanvault/internal/pkg/usercontext"
)

type fanAccessRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"access_code"`
}

type postRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	ImageURL    string `json:"image_url"`
}

// HandleFanAccess exchanges an access code for the creator's public page:
// profile data plus posts, newest first. The fan's email is recorded only
// in the request log; no account is created for them.
func HandleFanAccess(c *fiber.Ctx) error {
	var req fanAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repos := repository.GetGlobalRepositories()
	resolver := accesscode.NewResolver(repos.CreatorProfile)
	user, err := resolver.Resolve(req.AccessCode)
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid access code")
	}

	profile, err := repos.CreatorProfile.GetByUserID(user.ID)
	if err != nil || profile == nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load creator")
	}

	posts, err := repos.CreatorPost.GetByCreatorID(user.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load posts")
	}
	if posts == nil {
		posts = []models.CreatorPost{}
	}

	if err := counter.AddProfileView(profile.ID); err != nil {
		log.Printf("failed to count profile view for profile %d: %v", profile.ID, err)
	}

	return c.JSON(fiber.Map{
		"creator_name":  user.FullName,
		"creator_email": user.Email,
		"bio":           profile.Bio,
		"access_code":   profile.AccessCode,
		"profile_pic":   creatorAvatarURL(profile, user),
		"posts":         posts,
	})
}

// HandleGetCreatorContent returns a creator's profile and posts for a
// logged-in caller. The :id parameter is the creator profile id.
func HandleGetCreatorContent(c *fiber.Ctx) error {
	profileID, err := c.ParamsInt("id")
	if err != nil || profileID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Creator not found")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.CreatorProfile.GetByID(uint(profileID))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load creator")
	}
	if profile == nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Creator not found")
	}

	posts, err := repos.CreatorPost.GetByCreatorID(profile.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load posts")
	}
	if posts == nil {
		posts = []models.CreatorPost{}
	}

	return c.JSON(fiber.Map{
		"creator": fiber.Map{
			"id":          profile.User.ID,
			"full_name":   profile.User.FullName,
			"email":       profile.User.Email,
			"bio":         profile.Bio,
			"avatar_url":  creatorAvatarURL(profile, &profile.User),
			"access_code": profile.AccessCode,
		},
		"posts": posts,
	})
}

// HandleCreateCreatorContent publishes a post on a creator profile. Only
// the owning creator or an admin may post, and the owner must carry the
// creator role.
func HandleCreateCreatorContent(c *fiber.Ctx) error {
	profileID, err := c.ParamsInt("id")
	if err != nil || profileID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Creator not found")
	}

	repos := repository.GetGlobalRepositories()
	profile, err := repos.CreatorProfile.GetByID(uint(profileID))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load creator")
	}
	if profile == nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Creator not found")
	}

	userCtx := usercontext.GetUserContext(c)
	if userCtx.UserID != profile.UserID && !userCtx.IsAdmin {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Permission denied")
	}
	if !profile.User.IsCreator() {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "Only creators can post content")
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Title == "" {
		return jsonFieldErrors(c, models.FieldErrors{"title": "Title is required."})
	}

	post := &models.CreatorPost{
		CreatorID:   profile.UserID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		ImageURL:    req.ImageURL,
	}
	if err := repos.CreatorPost.Create(post); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create post")
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

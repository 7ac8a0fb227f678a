package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/app/repository"
)

// HandleAdminListUsers returns a paginated list of all accounts.
func HandleAdminListUsers(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	repos := repository.GetGlobalRepositories()
	users, err := repos.User.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load users")
	}

	total, err := repos.User.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load users")
	}

	items := make([]fiber.Map, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, fiber.Map{
			"id":            u.ID,
			"full_name":     u.FullName,
			"email":         u.Email,
			"role":          u.Role,
			"status":        u.Status,
			"is_verified":   u.IsVerified,
			"last_login_at": formatTimePtr(u.LastLoginAt),
			"created_at":    u.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"users":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminListCreators returns every creator profile with its account
// data and accumulated view count.
func HandleAdminListCreators(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	profiles, err := repos.CreatorProfile.ListWithUsers()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load creators")
	}

	items := make([]fiber.Map, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		items = append(items, fiber.Map{
			"id":          p.ID,
			"user_id":     p.UserID,
			"full_name":   p.User.FullName,
			"email":       p.User.Email,
			"access_code": p.AccessCode,
			"bio":         p.Bio,
			"avatar_url":  creatorAvatarURL(p, &p.User),
			"view_count":  p.ViewCount,
			"active":      p.User.IsActive(),
			"created_at":  p.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{"creators": items, "total": len(items)})
}

// HandleAdminStats returns the dashboard aggregates. Pending Redis view
// counters are flushed first so the numbers reflect recent traffic.
func HandleAdminStats(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	// Best effort; stale view counts are acceptable when Redis is down.
	if err := counterFlush(); err != nil {
		log.Printf("failed to flush view counters: %v", err)
	}

	totalCreators, err := repos.User.CountByRole(models.ROLE_CREATOR)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}
	activeCreators, err := repos.CreatorProfile.CountActive()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}
	totalCards, err := repos.CreditCard.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}
	totalPosts, err := repos.CreatorPost.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	monthlyCards, err := repos.CreditCard.CountCreatedSince(monthStart)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}
	monthlyCreators, err := repos.User.CountByRoleCreatedSince(models.ROLE_CREATOR, monthStart)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load stats")
	}

	return c.JSON(fiber.Map{
		"total_creators":   totalCreators,
		"active_creators":  activeCreators,
		"total_cards":      totalCards,
		"total_posts":      totalPosts,
		"monthly_cards":    monthlyCards,
		"monthly_creators": monthlyCreators,
	})
}

// HandleAdminListCreditCards returns all stored cards across users.
func HandleAdminListCreditCards(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	repos := repository.GetGlobalRepositories()
	cards, err := repos.CreditCard.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load credit cards")
	}
	if cards == nil {
		cards = []models.CreditCard{}
	}

	total, err := repos.CreditCard.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load credit cards")
	}

	items := make([]fiber.Map, 0, len(cards))
	for i := range cards {
		card := &cards[i]
		items = append(items, fiber.Map{
			"id":               card.ID,
			"user_id":          card.UserID,
			"card_holder_name": card.CardHolderName,
			"last4":            card.Last4(),
			"brand":            card.Brand,
			"exp_month":        card.ExpMonth,
			"exp_year":         card.ExpYear,
			"is_default":       card.IsDefault,
			"created_at":       card.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"cards":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

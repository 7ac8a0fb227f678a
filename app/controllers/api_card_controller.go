package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/app/repository"
	"github.com/fanvault/fanvault/internal/pkg/cardvault"
	"github.com/fanvault/fanvault/internal/pkg/usercontext"
)

// cardRequest is the write shape of the card API. Pointer fields
// distinguish "absent" from zero values so PATCH stays partial.
type cardRequest struct {
	CardHolderName      *string `json:"card_holder_name"`
	Digit               *string `json:"digit"`
	Brand               *string `json:"brand"`
	ExpMonth            *int    `json:"exp_month"`
	ExpYear             *int    `json:"exp_year"`
	CVV                 *string `json:"cvv"`
	IsDefault           *bool   `json:"is_default"`
	BillingAddressLine1 *string `json:"billing_address_line1"`
	BillingAddressLine2 *string `json:"billing_address_line2"`
	BillingCity         *string `json:"billing_city"`
	BillingState        *string `json:"billing_state"`
	BillingPostalCode   *string `json:"billing_postal_code"`
	BillingCountry      *string `json:"billing_country"`
}

func newCardManager() *cardvault.Manager {
	return cardvault.NewManager(repository.GetGlobalFactory().GetCreditCardRepository())
}

// HandleListCards returns the caller's cards, default first, newest first.
func HandleListCards(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	cards, err := newCardManager().List(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load cards")
	}
	if cards == nil {
		cards = []models.CreditCard{}
	}
	return c.JSON(cards)
}

// HandleCreateCard stores a new payment card for the caller.
func HandleCreateCard(c *fiber.Ctx) error {
	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	card := req.toCard()
	if err := newCardManager().Create(usercontext.GetUserID(c), card); err != nil {
		return respondCardError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(card)
}

// HandleGetCard returns a single card scoped to the caller's ownership.
func HandleGetCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Card not found")
	}
	card, err := newCardManager().Get(usercontext.GetUserID(c), uint(cardID))
	if err != nil {
		return respondCardError(c, err)
	}
	return c.JSON(card)
}

// HandleUpdateCard applies a partial update to an owned card.
func HandleUpdateCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Card not found")
	}

	var req cardRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	card, err := newCardManager().Update(usercontext.GetUserID(c), uint(cardID), req.toUpdate())
	if err != nil {
		return respondCardError(c, err)
	}
	return c.JSON(card)
}

// HandleDeleteCard removes an owned card, promoting a replacement default
// when the deleted card carried the flag.
func HandleDeleteCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Card not found")
	}
	if err := newCardManager().Delete(usercontext.GetUserID(c), uint(cardID)); err != nil {
		return respondCardError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetDefaultCard makes the given card the caller's default.
func HandleSetDefaultCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil || cardID <= 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Card not found")
	}
	if err := newCardManager().SetDefault(usercontext.GetUserID(c), uint(cardID)); err != nil {
		return respondCardError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Default card updated successfully"})
}

func (r *cardRequest) toCard() *models.CreditCard {
	card := &models.CreditCard{}
	r.toUpdate().Apply(card)
	return card
}

func (r *cardRequest) toUpdate() cardvault.CardUpdate {
	return cardvault.CardUpdate{
		CardHolderName:      r.CardHolderName,
		Digit:               r.Digit,
		Brand:               r.Brand,
		ExpMonth:            r.ExpMonth,
		ExpYear:             r.ExpYear,
		CVV:                 r.CVV,
		IsDefault:           r.IsDefault,
		BillingAddressLine1: r.BillingAddressLine1,
		BillingAddressLine2: r.BillingAddressLine2,
		BillingCity:         r.BillingCity,
		BillingState:        r.BillingState,
		BillingPostalCode:   r.BillingPostalCode,
		BillingCountry:      r.BillingCountry,
	}
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validationNow = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func validTestCard() *CreditCard {
	return &CreditCard{
		CardHolderName:      "Jane Fan",
		Digit:               "4111111111111111",
		Brand:               "Visa",
		CVV:                 "123",
		ExpMonth:            12,
		ExpYear:             2030,
		BillingAddressLine1: "1 Main St",
		BillingCity:         "Springfield",
		BillingState:        "IL",
		BillingPostalCode:   "62701",
		BillingCountry:      "USA",
	}
}

func TestValidateFieldsAcceptsValidCard(t *testing.T) {
	assert.Nil(t, validTestCard().ValidateFields(validationNow))
}

func TestValidateFieldsRejectsNonDigitNumber(t *testing.T) {
	card := validTestCard()
	card.Digit = "4111-1111-1111-1111"

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Equal(t, "Card number must contain only digits.", errs["digit"])
}

func TestValidateFieldsRejectsWrongLength(t *testing.T) {
	card := validTestCard()
	card.Digit = "411111111111" // 12 digits

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Equal(t, "Card number must be between 13 and 19 digits.", errs["digit"])

	card.Digit = "41111111111111111111" // 20 digits
	errs = card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Contains(t, errs, "digit")
}

func TestValidateFieldsRejectsBadMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		card := validTestCard()
		card.ExpMonth = month
		errs := card.ValidateFields(validationNow)
		require.NotNil(t, errs)
		assert.Equal(t, "Expiration month must be between 1 and 12.", errs["exp_month"])
	}
}

func TestValidateFieldsRejectsPastYear(t *testing.T) {
	card := validTestCard()
	card.ExpYear = 2025

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Equal(t, "Card expiration year cannot be in the past.", errs["exp_year"])
}

func TestValidateFieldsRejectsExpiredMonthInCurrentYear(t *testing.T) {
	card := validTestCard()
	card.ExpYear = validationNow.Year()
	card.ExpMonth = int(validationNow.Month()) - 1

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Equal(t, "Card has expired.", errs["exp_month"])
}

func TestValidateFieldsAcceptsCurrentMonth(t *testing.T) {
	card := validTestCard()
	card.ExpYear = validationNow.Year()
	card.ExpMonth = int(validationNow.Month())

	assert.Nil(t, card.ValidateFields(validationNow))
}

func TestValidateFieldsRequiresBillingFields(t *testing.T) {
	card := validTestCard()
	card.BillingAddressLine1 = "  "
	card.BillingCity = ""
	card.BillingCountry = ""

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.Equal(t, "Address Line1 is required.", errs["billing_address_line1"])
	assert.Equal(t, "City is required.", errs["billing_city"])
	assert.Equal(t, "Country is required.", errs["billing_country"])
	assert.NotContains(t, errs, "billing_address_line2")
}

func TestValidateFieldsCollectsMultipleErrors(t *testing.T) {
	card := &CreditCard{Digit: "abc", ExpMonth: 0, ExpYear: 1999}

	errs := card.ValidateFields(validationNow)
	require.NotNil(t, errs)
	assert.GreaterOrEqual(t, len(errs), 3)

	// Error() renders fields sorted and joined for logs.
	msg := errs.Error()
	assert.Contains(t, msg, "digit:")
	assert.Contains(t, msg, "exp_month:")
}

func TestLast4(t *testing.T) {
	card := &CreditCard{Digit: "4111111111111111", Brand: "Visa"}
	assert.Equal(t, "1111", card.Last4())
	assert.Equal(t, "Visa ending in 1111", card.String())

	short := &CreditCard{Digit: "12"}
	assert.Equal(t, "12", short.Last4())
}

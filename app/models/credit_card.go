package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CreditCard is one stored payment method. The is_default flag is owned by
// the card manager (internal/pkg/cardvault); nothing else may write it.
type CreditCard struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"index;not null" json:"-"`
	User           User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CardHolderName string `gorm:"type:varchar(255)" json:"card_holder_name"`
	Digit          string `gorm:"type:varchar(19)" json:"digit"`
	Brand          string `gorm:"type:varchar(50)" json:"brand"`
	ExpMonth       int    `json:"exp_month"`
	ExpYear        int    `json:"exp_year"`
	CVV            string `gorm:"type:varchar(4)" json:"cvv"`
	IsDefault      bool   `gorm:"default:false" json:"is_default"`

	BillingAddressLine1 string `gorm:"type:varchar(255)" json:"billing_address_line1"`
	BillingAddressLine2 string `gorm:"type:varchar(255);default:null" json:"billing_address_line2"`
	BillingCity         string `gorm:"type:varchar(100)" json:"billing_city"`
	BillingState        string `gorm:"type:varchar(100)" json:"billing_state"`
	BillingPostalCode   string `gorm:"type:varchar(20)" json:"billing_postal_code"`
	BillingCountry      string `gorm:"type:varchar(100)" json:"billing_country"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Last4 returns the trailing four digits of the card number.
func (cc *CreditCard) Last4() string {
	if len(cc.Digit) < 4 {
		return cc.Digit
	}
	return cc.Digit[len(cc.Digit)-4:]
}

func (cc *CreditCard) String() string {
	return fmt.Sprintf("%s ending in %s", cc.Brand, cc.Last4())
}

// FieldErrors maps a request field name to its validation message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateFields checks field formats only; ownership and default-flag
// invariants are the card manager's job. Returns nil when the card is valid.
func (cc *CreditCard) ValidateFields(now time.Time) FieldErrors {
	errs := FieldErrors{}

	if !isDigits(cc.Digit) {
		errs["digit"] = "Card number must contain only digits."
	} else if len(cc.Digit) < 13 || len(cc.Digit) > 19 {
		errs["digit"] = "Card number must be between 13 and 19 digits."
	}

	if cc.ExpMonth < 1 || cc.ExpMonth > 12 {
		errs["exp_month"] = "Expiration month must be between 1 and 12."
	}

	if cc.ExpYear < now.Year() {
		errs["exp_year"] = "Card expiration year cannot be in the past."
	} else if cc.ExpYear == now.Year() && cc.ExpMonth >= 1 && cc.ExpMonth <= 12 && cc.ExpMonth < int(now.Month()) {
		errs["exp_month"] = "Card has expired."
	}

	required := map[string]string{
		"billing_address_line1": cc.BillingAddressLine1,
		"billing_city":          cc.BillingCity,
		"billing_state":         cc.BillingState,
		"billing_postal_code":   cc.BillingPostalCode,
		"billing_country":       cc.BillingCountry,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = billingFieldLabel(field) + " is required."
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func billingFieldLabel(field string) string {
	name := strings.TrimPrefix(field, "billing_")
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

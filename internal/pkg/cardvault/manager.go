// Package cardvault enforces the per-user default-card invariant: a user
// with at least one stored card has exactly one card flagged as default.
// Every mutation of a card collection goes through the Manager; it is the
// sole writer of the is_default flag.
package cardvault

import (
	"errors"
	"strings"
	"time"

	"github.com/fanvault/fanvault/app/models"
)

var (
	// ErrNotFound is returned when the card does not exist or is not owned
	// by the requesting user.
	ErrNotFound = errors.New("card not found")
)

// Manager owns all mutations of a user's card set.
type Manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a card manager on top of a transactional store.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// CardUpdate carries a partial update; nil fields stay untouched.
type CardUpdate struct {
	CardHolderName      *string
	Digit               *string
	Brand               *string
	ExpMonth            *int
	ExpYear             *int
	CVV                 *string
	IsDefault           *bool
	BillingAddressLine1 *string
	BillingAddressLine2 *string
	BillingCity         *string
	BillingState        *string
	BillingPostalCode   *string
	BillingCountry      *string
}

// List returns the user's cards, default first, then newest first.
func (m *Manager) List(userID uint) ([]models.CreditCard, error) {
	return m.store.FindByUser(userID)
}

// Get returns a single card scoped to its owner.
func (m *Manager) Get(userID, cardID uint) (*models.CreditCard, error) {
	card, err := m.store.FindByID(userID, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrNotFound
	}
	return card, nil
}

// Create validates and inserts a new card. A user's first card is always
// stored as the default, whatever the request asked for. When the request
// asks for default on a later card, every other card is un-defaulted in the
// same transaction.
func (m *Manager) Create(userID uint, card *models.CreditCard) error {
	card.ID = 0
	card.UserID = userID
	if errs := card.ValidateFields(m.now()); errs != nil {
		return errs
	}

	return m.withRetry(func() error {
		return m.store.WithTx(func(tx Tx) error {
			if _, err := tx.LockOwned(userID); err != nil {
				return err
			}
			count, err := tx.CountByUser(userID)
			if err != nil {
				return err
			}
			card.IsDefault = firstCardBecomesDefault(count, card.IsDefault)
			if card.IsDefault && count > 0 {
				if err := tx.ClearDefault(userID, 0); err != nil {
					return err
				}
			}
			return tx.Insert(card)
		})
	})
}

// Update applies a partial update to an owned card. Toggling a non-default
// card to default clears the flag on every other card first; an update that
// does not touch is_default has no invariant side effect. Un-defaulting the
// user's only default card is allowed and leaves the set without a default.
func (m *Manager) Update(userID, cardID uint, fields CardUpdate) (*models.CreditCard, error) {
	var updated *models.CreditCard
	err := m.withRetry(func() error {
		return m.store.WithTx(func(tx Tx) error {
			if _, err := tx.LockOwned(userID); err != nil {
				return err
			}
			card, err := tx.FindByID(userID, cardID)
			if err != nil {
				return err
			}
			if card == nil {
				return ErrNotFound
			}

			wasDefault := card.IsDefault
			fields.Apply(card)
			if errs := card.ValidateFields(m.now()); errs != nil {
				return errs
			}

			if card.IsDefault && !wasDefault {
				if err := tx.ClearDefault(userID, card.ID); err != nil {
					return err
				}
			}
			if err := tx.Save(card); err != nil {
				return err
			}
			updated = card
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an owned card. When the deleted card was the default, the
// most recently created remaining card is promoted in the same transaction.
func (m *Manager) Delete(userID, cardID uint) error {
	return m.withRetry(func() error {
		return m.store.WithTx(func(tx Tx) error {
			if _, err := tx.LockOwned(userID); err != nil {
				return err
			}
			card, err := tx.FindByID(userID, cardID)
			if err != nil {
				return err
			}
			if card == nil {
				return ErrNotFound
			}
			wasDefault := card.IsDefault
			if err := tx.Delete(card); err != nil {
				return err
			}
			if wasDefault {
				return promoteNewestRemaining(tx, userID)
			}
			return nil
		})
	})
}

// SetDefault makes the given card the user's default. Calling it on a card
// that is already the default is a no-op.
func (m *Manager) SetDefault(userID, cardID uint) error {
	return m.withRetry(func() error {
		return m.store.WithTx(func(tx Tx) error {
			if _, err := tx.LockOwned(userID); err != nil {
				return err
			}
			card, err := tx.FindByID(userID, cardID)
			if err != nil {
				return err
			}
			if card == nil {
				return ErrNotFound
			}
			if card.IsDefault {
				return nil
			}
			if err := tx.ClearDefault(userID, card.ID); err != nil {
				return err
			}
			card.IsDefault = true
			return tx.Save(card)
		})
	})
}

// firstCardBecomesDefault is the first-card-is-default policy: a user's
// first stored card is the default regardless of the requested flag.
func firstCardBecomesDefault(existing int64, requested bool) bool {
	if existing == 0 {
		return true
	}
	return requested
}

// promoteNewestRemaining is the delete-promotion policy: after the default
// card is removed, the newest remaining card (ties broken by highest id)
// becomes the default. An empty card set has no default.
func promoteNewestRemaining(tx Tx, userID uint) error {
	next, err := tx.NewestRemaining(userID)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	next.IsDefault = true
	return tx.Save(next)
}

const retryDelay = 25 * time.Millisecond

// withRetry re-runs the transaction exactly once after a transient store
// failure (deadlock, lock wait timeout). Anything else surfaces directly.
func (m *Manager) withRetry(fn func() error) error {
	err := fn()
	if err == nil || !IsTransient(err) {
		return err
	}
	time.Sleep(retryDelay)
	return fn()
}

// IsTransient reports whether err looks like a transaction conflict worth a
// single retry. Covers MySQL deadlock/lock-wait errors and SQLite busy
// states.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"deadlock",
		"lock wait timeout",
		"try restarting transaction",
		"database is locked",
		"database table is locked",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Apply copies the set fields onto the card, leaving nil fields untouched.
func (u CardUpdate) Apply(card *models.CreditCard) {
	if u.CardHolderName != nil {
		card.CardHolderName = *u.CardHolderName
	}
	if u.Digit != nil {
		card.Digit = *u.Digit
	}
	if u.Brand != nil {
		card.Brand = *u.Brand
	}
	if u.ExpMonth != nil {
		card.ExpMonth = *u.ExpMonth
	}
	if u.ExpYear != nil {
		card.ExpYear = *u.ExpYear
	}
	if u.CVV != nil {
		card.CVV = *u.CVV
	}
	if u.IsDefault != nil {
		card.IsDefault = *u.IsDefault
	}
	if u.BillingAddressLine1 != nil {
		card.BillingAddressLine1 = *u.BillingAddressLine1
	}
	if u.BillingAddressLine2 != nil {
		card.BillingAddressLine2 = *u.BillingAddressLine2
	}
	if u.BillingCity != nil {
		card.BillingCity = *u.BillingCity
	}
	if u.BillingState != nil {
		card.BillingState = *u.BillingState
	}
	if u.BillingPostalCode != nil {
		card.BillingPostalCode = *u.BillingPostalCode
	}
	if u.BillingCountry != nil {
		card.BillingCountry = *u.BillingCountry
	}
}

package cardvault

import "github.com/fanvault/fanvault/app/models"

// Store is the persistence port the card manager drives. Implementations
// must make WithTx atomic: either every mutation made through the Tx is
// visible after it returns, or none is.
type Store interface {
	// WithTx runs fn inside one transaction. Row locks taken through the
	// Tx are held until the transaction ends.
	WithTx(fn func(tx Tx) error) error

	// FindByUser returns the user's cards, default first, then newest first.
	FindByUser(userID uint) ([]models.CreditCard, error)

	// FindByID returns the card only when it is owned by userID.
	FindByID(userID, cardID uint) (*models.CreditCard, error)
}

// Tx exposes the atomic primitives used inside a manager transaction.
type Tx interface {
	// LockOwned reads and write-locks every card owned by userID, which
	// serializes concurrent clear-then-set sequences on the same user.
	LockOwned(userID uint) ([]models.CreditCard, error)

	FindByID(userID, cardID uint) (*models.CreditCard, error)
	CountByUser(userID uint) (int64, error)
	Insert(card *models.CreditCard) error
	Save(card *models.CreditCard) error
	Delete(card *models.CreditCard) error

	// ClearDefault unsets is_default on all of the user's cards except
	// exceptID (0 means no exception).
	ClearDefault(userID, exceptID uint) error

	// NewestRemaining returns the user's most recently created card, with
	// identical timestamps broken by highest id, or nil when none remain.
	NewestRemaining(userID uint) (*models.CreditCard, error)
}

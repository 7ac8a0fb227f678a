package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/internal/pkg/cardvault"
)

// creditCardRepository implements CreditCardRepository; its transactional
// half is the cardvault.Store the card manager runs on.
type creditCardRepository struct {
	db *gorm.DB
}

// NewCreditCardRepository creates a new credit card repository instance
func NewCreditCardRepository(db *gorm.DB) CreditCardRepository {
	return &creditCardRepository{db: db}
}

// WithTx runs fn inside one database transaction
func (r *creditCardRepository) WithTx(fn func(tx cardvault.Tx) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&creditCardTx{db: tx})
	})
}

// FindByUser returns the user's cards, default first, then newest first
func (r *creditCardRepository) FindByUser(userID uint) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC, id DESC").
		Find(&cards).Error
	return cards, err
}

// FindByID returns the card only when it is owned by userID; (nil, nil)
// when no such card exists.
func (r *creditCardRepository) FindByID(userID, cardID uint) (*models.CreditCard, error) {
	return findOwnedCard(r.db, userID, cardID)
}

// List retrieves a paginated list over all users' cards, newest first
func (r *creditCardRepository) List(offset, limit int) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	err := r.db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&cards).Error
	return cards, err
}

// Count returns the total number of stored cards
func (r *creditCardRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CreditCard{}).Count(&count).Error
	return count, err
}

// CountCreatedSince counts cards stored at or after the given instant
func (r *creditCardRepository) CountCreatedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.CreditCard{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// creditCardTx implements cardvault.Tx on an open gorm transaction
type creditCardTx struct {
	db *gorm.DB
}

// LockOwned reads the user's cards under a write lock. On MySQL this is
// SELECT ... FOR UPDATE; SQLite has no row locks and serializes writers on
// its own, so the clause is skipped there.
func (t *creditCardTx) LockOwned(userID uint) ([]models.CreditCard, error) {
	q := t.db.Where("user_id = ?", userID).Order("id")
	if t.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cards []models.CreditCard
	err := q.Find(&cards).Error
	return cards, err
}

func (t *creditCardTx) FindByID(userID, cardID uint) (*models.CreditCard, error) {
	return findOwnedCard(t.db, userID, cardID)
}

func (t *creditCardTx) CountByUser(userID uint) (int64, error) {
	var count int64
	err := t.db.Model(&models.CreditCard{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (t *creditCardTx) Insert(card *models.CreditCard) error {
	return t.db.Create(card).Error
}

func (t *creditCardTx) Save(card *models.CreditCard) error {
	return t.db.Save(card).Error
}

func (t *creditCardTx) Delete(card *models.CreditCard) error {
	return t.db.Delete(card).Error
}

// ClearDefault unsets is_default on all of the user's cards except exceptID
func (t *creditCardTx) ClearDefault(userID, exceptID uint) error {
	return t.db.Model(&models.CreditCard{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, exceptID, true).
		Update("is_default", false).Error
}

// NewestRemaining returns the most recently created card, ties broken by
// highest id so the pick stays deterministic under retry.
func (t *creditCardTx) NewestRemaining(userID uint) (*models.CreditCard, error) {
	var card models.CreditCard
	err := t.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func findOwnedCard(db *gorm.DB, userID, cardID uint) (*models.CreditCard, error) {
	var card models.CreditCard
	err := db.Where("user_id = ? AND id = ?", userID, cardID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

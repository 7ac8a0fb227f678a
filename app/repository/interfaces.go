package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fanvault/fanvault/app/models"
	"github.com/fanvault/fanvault/internal/pkg/cardvault"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByRole(role string) (int64, error)
	CountByRoleCreatedSince(role string, since time.Time) (int64, error)
}

// CreatorProfileRepository defines the interface for creator profile operations
type CreatorProfileRepository interface {
	Create(profile *models.CreatorProfile) error
	GetByID(id uint) (*models.CreatorProfile, error)
	GetByUserID(userID uint) (*models.CreatorProfile, error)
	GetByAccessCode(code string) (*models.CreatorProfile, error)
	AccessCodeExists(code string) (bool, error)
	ListWithUsers() ([]models.CreatorProfile, error)
	Update(profile *models.CreatorProfile) error
	Count() (int64, error)
	CountActive() (int64, error)
}

// CreditCardRepository combines the card manager's transactional store with
// the admin-facing listing queries.
type CreditCardRepository interface {
	cardvault.Store

	List(offset, limit int) ([]models.CreditCard, error)
	Count() (int64, error)
	CountCreatedSince(since time.Time) (int64, error)
}

// CreatorPostRepository defines the interface for creator content operations
type CreatorPostRepository interface {
	Create(post *models.CreatorPost) error
	GetByCreatorID(creatorID uint) ([]models.CreatorPost, error)
	Count() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User           UserRepository
	CreatorProfile CreatorProfileRepository
	CreditCard     CreditCardRepository
	CreatorPost    CreatorPostRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		CreatorProfile: NewCreatorProfileRepository(db),
		CreditCard:     NewCreditCardRepository(db),
		CreatorPost:    NewCreatorPostRepository(db),
	}
}

package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fanvault/fanvault/app/models"
)

// creatorProfileRepository implements the CreatorProfileRepository interface
type creatorProfileRepository struct {
	db *gorm.DB
}

// NewCreatorProfileRepository creates a new creator profile repository instance
func NewCreatorProfileRepository(db *gorm.DB) CreatorProfileRepository {
	return &creatorProfileRepository{db: db}
}

// Create creates a new creator profile in the database
func (r *creatorProfileRepository) Create(profile *models.CreatorProfile) error {
	return r.db.Create(profile).Error
}

// GetByID retrieves a profile with its user by profile ID
func (r *creatorProfileRepository) GetByID(id uint) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := r.db.Preload("User").First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserID retrieves the profile belonging to the given user
func (r *creatorProfileRepository) GetByUserID(userID uint) (*models.CreatorProfile, error) {
	var profile models.CreatorProfile
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByAccessCode resolves a trimmed access code against the unique index.
// Returns (nil, nil) when no profile carries the code.
func (r *creatorProfileRepository) GetByAccessCode(code string) (*models.CreatorProfile, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}
	var profile models.CreatorProfile
	err := r.db.Preload("User").Where("access_code = ?", trimmed).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// AccessCodeExists reports whether a code is already taken
func (r *creatorProfileRepository) AccessCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CreatorProfile{}).
		Where("access_code = ?", strings.TrimSpace(code)).
		Count(&count).Error
	return count > 0, err
}

// ListWithUsers returns all creator profiles with their users, newest first
func (r *creatorProfileRepository) ListWithUsers() ([]models.CreatorProfile, error) {
	var profiles []models.CreatorProfile
	err := r.db.Preload("User").Order("id DESC").Find(&profiles).Error
	return profiles, err
}

// Update updates an existing profile in the database
func (r *creatorProfileRepository) Update(profile *models.CreatorProfile) error {
	return r.db.Save(profile).Error
}

// Count returns the total number of creator profiles
func (r *creatorProfileRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CreatorProfile{}).Count(&count).Error
	return count, err
}

// CountActive counts profiles whose linked user is active
func (r *creatorProfileRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.CreatorProfile{}).
		Joins("JOIN users ON users.id = creator_profiles.user_id").
		Where("users.status = ? AND users.deleted_at IS NULL", models.STATUS_ACTIVE).
		Count(&count).Error
	return count, err
}

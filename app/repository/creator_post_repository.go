package repository

import (
	"gorm.io/gorm"

	"github.com/fanvault/fanvault/app/models"
)

// creatorPostRepository implements the CreatorPostRepository interface
type creatorPostRepository struct {
	db *gorm.DB
}

// NewCreatorPostRepository creates a new creator post repository instance
func NewCreatorPostRepository(db *gorm.DB) CreatorPostRepository {
	return &creatorPostRepository{db: db}
}

// Create creates a new post in the database
func (r *creatorPostRepository) Create(post *models.CreatorPost) error {
	return r.db.Create(post).Error
}

// GetByCreatorID returns a creator's posts, newest first
func (r *creatorPostRepository) GetByCreatorID(creatorID uint) ([]models.CreatorPost, error) {
	var posts []models.CreatorPost
	err := r.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// Count returns the total number of posts
func (r *creatorPostRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.CreatorPost{}).Count(&count).Error
	return count, err
}

package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreatorProfile is the one-to-one extension of a creator user. The access
// code stored here doubles as the bearer credential fans present instead of
// a password or OAuth token, so it is unique across all profiles and always
// persisted without surrounding whitespace.
type CreatorProfile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AccessCode string    `gorm:"uniqueIndex;type:varchar(20);not null" json:"access_code"`
	Bio        string    `gorm:"type:text" json:"bio"`
	AvatarURL  string    `gorm:"type:varchar(255);default:null" json:"avatar_url"`
	ViewCount  int64     `gorm:"default:0" json:"view_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeSave normalizes the access code so a code written with stray
// whitespace can never cause a false negative at lookup time.
func (p *CreatorProfile) BeforeSave(_ *gorm.DB) error {
	p.AccessCode = strings.TrimSpace(p.AccessCode)
	return nil
}

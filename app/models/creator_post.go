package models

import "time"

// CreatorPost is a single piece of content published by a creator. Media is
// referenced by URL; upload and storage of the files themselves happen
// outside this service.
type CreatorPost struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatorID   uint      `gorm:"index;not null" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	VideoURL    string    `gorm:"type:varchar(255);default:null" json:"video_url"`
	ImageURL    string    `gorm:"type:varchar(255);default:null" json:"image_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

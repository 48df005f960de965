package model

import (
	"time"

	"gorm.io/gorm"

	"controlnest-backend/internal/objectid"
)

// Base carries the identifier and timestamps shared by every record kind.
type Base struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a fresh object identifier when none was set.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = objectid.New()
	}
	return nil
}

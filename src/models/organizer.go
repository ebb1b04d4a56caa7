package models

import (
	"planngo/src/types"
)

type Organizer struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	UserID       uint    `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Bio          string  `json:"bio,omitempty"`
	Organization string  `json:"organization,omitempty"`
	IsVerified   bool    `json:"is_verified"`
	Revenue      float64 `json:"revenue"`

	User   User    `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Events []Event `gorm:"foreignKey:organizer_id" json:"events,omitempty"`

	types.Timestamps
}

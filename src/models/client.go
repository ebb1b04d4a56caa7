package models

import (
	"planngo/src/types"
	"time"
)

type Client struct {
	ID     uint       `gorm:"primarykey" json:"id"`
	UserID uint       `gorm:"uniqueIndex" json:"user_id,omitempty"`
	Dob    *time.Time `json:"dob,omitempty"`
	Gender *string    `json:"gender,omitempty"`
	Bio    *string    `json:"bio,omitempty"`

	User User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}

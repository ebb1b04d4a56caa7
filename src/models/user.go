package models

import (
	"planngo/src/types"
)

type User struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	Name           string  `json:"name,omitempty"`
	Email          string  `gorm:"uniqueIndex" json:"email,omitempty"`
	HashedPassword string  `json:"-"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Pfp            *string `json:"pfp,omitempty"`
	Role           string  `json:"role,omitempty"`
	EmailVerified  bool    `json:"email_verified,omitempty"`
	GoogleID       *string `gorm:"index" json:"-"`

	types.Timestamps
}

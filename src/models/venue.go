package models

import (
	"planngo/src/types"
)

type Venue struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	VenueName     string  `json:"venue_name,omitempty"`
	Location      string  `json:"location,omitempty"`
	Capacity      uint    `json:"capacity,omitempty"`
	IsAvailable   bool    `json:"is_available"`
	GoogleMapsURL *string `json:"google_maps_url,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Country       *string `json:"country,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	ContactEmail  *string `json:"contact_email,omitempty"`
	Description   *string `json:"description,omitempty"`
	Amenities     *string `json:"amenities,omitempty"`

	types.Timestamps
}

package models

import (
	"planngo/src/types"
	"time"
)

type Event struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	Title            string    `json:"title,omitempty"`
	Slug             string    `gorm:"index" json:"slug,omitempty"`
	Category         string    `json:"category,omitempty"`
	EventImage       *string   `json:"event_image,omitempty"`
	Description      string    `json:"description,omitempty"`
	Location         string    `json:"location,omitempty"`
	StartDate        time.Time `json:"start_date,omitempty"`
	EndDate          time.Time `json:"end_date,omitempty"`
	IsApproved       bool      `json:"is_approved"`
	RejectionReason  *string   `json:"rejection_reason,omitempty"`
	TicketPrice      float64   `json:"ticket_price"`
	AvailableTickets uint      `json:"available_tickets"`
	VenueID          uint      `json:"venue_id,omitempty"`
	OrganizerID      uint      `json:"organizer_id,omitempty"`

	Venue     Venue     `gorm:"foreignKey:venue_id" json:"venue,omitempty"`
	Organizer Organizer `gorm:"foreignKey:organizer_id" json:"-"`
	Tickets   []Ticket  `gorm:"foreignKey:event_id" json:"tickets,omitempty"`

	types.Timestamps
}

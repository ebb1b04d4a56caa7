package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Role string

const (
	ROLE_ADMIN     Role = "admin"
	ROLE_ORGANIZER Role = "organizer"
	ROLE_CLIENT    Role = "client"
)

type PaymentStatus string

const (
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type RegisterRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role" binding:"required,oneof=client organizer"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequestBody struct {
	IDToken string `json:"id_token" binding:"required"`
	Role    string `json:"role,omitempty" binding:"omitempty,oneof=client organizer"`
}

type CreateVenueRequestBody struct {
	VenueName     string  `json:"venue_name" binding:"required"`
	Location      string  `json:"location" binding:"required"`
	Capacity      uint    `json:"capacity" binding:"required,min=1"`
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
}

type CreateEventRequestBody struct {
	Title            string  `json:"title" binding:"required"`
	Category         string  `json:"category" binding:"required"`
	EventImage       *string `json:"event_image,omitempty"`
	Description      string  `json:"description" binding:"required"`
	StartDate        string  `json:"start_date" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate          string  `json:"end_date" binding:"required,gtdate=StartDate" time_format:"2006-01-02 15:04:05 -07:00"`
	VenueID          uint    `json:"venue_id" binding:"required"`
	TicketPrice      float64 `json:"ticket_price" binding:"required,gt=0"`
	AvailableTickets uint    `json:"available_tickets" binding:"required,min=1"`
}

type ApproveEventRequestBody struct {
	EventID         uint    `json:"event_id" binding:"required"`
	IsApproved      bool    `json:"is_approved"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

type ApproveOrganizerRequestBody struct {
	OrganizerID uint `json:"organizer_id" binding:"required"`
	IsApproved  bool `json:"is_approved"`
}

type UpdateOrganizerProfileRequestBody struct {
	Bio          string  `json:"bio,omitempty"`
	Organization string  `json:"organization,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

type UpdateClientProfileRequestBody struct {
	Dob    *string `json:"dob,omitempty"`
	Gender *string `json:"gender,omitempty"`
	Bio    *string `json:"bio,omitempty"`
	Phone  *string `json:"phone,omitempty"`
}

type BookTicketRequestBody struct {
	EventID uint `json:"event_id" binding:"required"`
	Count   uint `json:"count" binding:"required,min=1"`
}

type ConfirmPaymentRequestBody struct {
	PaymentType      string `json:"payment_type" binding:"required,oneof=card cash wallet"`
	PaymentReference string `json:"payment_reference" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type EventTicketsURIParams struct {
	EventID uint `uri:"eventId" binding:"required"`
}

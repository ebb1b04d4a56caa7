package models

import (
	"planngo/src/types"
	"time"
)

type Payment struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	TicketID  uint                `gorm:"uniqueIndex" json:"ticket_id,omitempty"`
	ClientID  uint                `gorm:"index" json:"client_id,omitempty"`
	Amount    float64             `json:"amount"`
	Status    types.PaymentStatus `gorm:"default:'completed'" json:"status,omitempty"`
	Type      string              `json:"type,omitempty"`
	Reference string              `json:"reference,omitempty"`
	PaidAt    time.Time           `json:"paid_at,omitempty"`

	Ticket Ticket `gorm:"foreignKey:ticket_id" json:"-"`

	types.Timestamps
}

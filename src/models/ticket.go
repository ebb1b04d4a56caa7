package models

import (
	"database/sql/driver"
	"fmt"
	"planngo/src/types"
)

type TicketStatus string

const (
	TICKET_PENDING   TicketStatus = "pending"
	TICKET_CONFIRMED TicketStatus = "confirmed"
	TICKET_CANCELLED TicketStatus = "cancelled"
)

// transitions holds the full ticket lifecycle. pending is the only initial
// state; confirmed and cancelled are terminal except that a confirmed ticket
// may still be cancelled (which flips its payment to refunded).
var transitions = map[TicketStatus][]TicketStatus{
	TICKET_PENDING:   {TICKET_CONFIRMED, TICKET_CANCELLED},
	TICKET_CONFIRMED: {TICKET_CANCELLED},
	TICKET_CANCELLED: {},
}

func (s TicketStatus) CanTransition(to TicketStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *TicketStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*s = TicketStatus(v)
	case string:
		*s = TicketStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into TicketStatus", value)
	}
	return nil
}

func (s TicketStatus) Value() (driver.Value, error) {
	return string(s), nil
}

type Ticket struct {
	ID       uint         `gorm:"primarykey" json:"id"`
	EventID  uint         `gorm:"index" json:"event_id,omitempty"`
	ClientID uint         `gorm:"index" json:"client_id,omitempty"`
	Count    uint         `json:"count"`
	Price    float64      `json:"price"`
	Status   TicketStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Event   Event    `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Client  Client   `gorm:"foreignKey:client_id" json:"-"`
	Payment *Payment `gorm:"foreignKey:ticket_id" json:"payment,omitempty"`

	types.Timestamps
}

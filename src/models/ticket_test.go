package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusTransitions(t *testing.T) {
	cases := []struct {
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{TICKET_PENDING, TICKET_CONFIRMED, true},
		{TICKET_PENDING, TICKET_CANCELLED, true},
		{TICKET_CONFIRMED, TICKET_CANCELLED, true},
		{TICKET_CONFIRMED, TICKET_PENDING, false},
		{TICKET_CONFIRMED, TICKET_CONFIRMED, false},
		{TICKET_CANCELLED, TICKET_PENDING, false},
		{TICKET_CANCELLED, TICKET_CONFIRMED, false},
		{TICKET_CANCELLED, TICKET_CANCELLED, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.allowed, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTicketStatusScan(t *testing.T) {
	var status TicketStatus
	assert.Nil(t, status.Scan("confirmed"))
	assert.Equal(t, TICKET_CONFIRMED, status)

	assert.Nil(t, status.Scan([]byte("cancelled")))
	assert.Equal(t, TICKET_CANCELLED, status)

	v, err := TICKET_PENDING.Value()
	assert.Nil(t, err)
	assert.Equal(t, "pending", v)
}

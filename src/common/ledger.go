// Package common holds the booking ledger: every mutation of an event's
// available_tickets counter and every ticket status transition goes through
// here, inside a single transaction per operation.
package common

import (
	"errors"
	"fmt"
	"log"
	"planngo/src/db"
	"planngo/src/models"
	"planngo/src/types"
	"time"

	"gorm.io/gorm"
)

// maxRetries bounds replays of a transaction that lost a store-level
// write conflict before the error is surfaced to the caller.
const maxRetries = 3

// CancelCutoff is how long before an event starts that cancellation closes.
const CancelCutoff = 24 * time.Hour

// Reserve books count tickets on an event for a client. The capacity check
// and the decrement run as one conditional UPDATE so two racing reservations
// can never jointly oversell: the one that loses the row update gets
// ErrInsufficientInventory.
func Reserve(eventID uint, clientID uint, count uint) (*models.Ticket, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", ErrInvalidState)
	}
	var ticket *models.Ticket
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ticket, err = reserveOnce(eventID, clientID, count)
		if err == nil || !isRetryable(err) {
			return ticket, err
		}
		log.Printf("Reserve attempt %d for Event [%d] hit a write conflict: %s\n", attempt, eventID, err.Error())
	}
	return nil, err
}

func reserveOnce(eventID uint, clientID uint, count uint) (*models.Ticket, error) {
	var ticket models.Ticket
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where(&models.Client{ID: clientID}).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: client [%d]", ErrNotFound, clientID)
			}
			return err
		}
		var event models.Event
		if err := tx.Where(&models.Event{ID: eventID}).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: event [%d]", ErrNotFound, eventID)
			}
			return err
		}
		if !event.IsApproved {
			return fmt.Errorf("%w: event [%d] is not approved", ErrInvalidState, eventID)
		}
		if !event.StartDate.After(time.Now()) {
			return fmt.Errorf("%w: cannot book tickets for past events", ErrInvalidState)
		}
		res := tx.
			Model(&models.Event{}).
			Where("id = ? AND available_tickets >= ?", eventID, count).
			UpdateColumn("available_tickets", gorm.Expr("available_tickets - ?", count))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: event [%d]", ErrInsufficientInventory, eventID)
		}
		ticket = models.Ticket{
			EventID:  eventID,
			ClientID: clientID,
			Count:    count,
			Price:    event.TicketPrice,
			Status:   models.TICKET_PENDING,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ConfirmPayment moves a pending ticket to confirmed and records exactly one
// Payment for it. The transition is guarded by a status-conditional UPDATE so
// a duplicate confirm loses the race instead of creating a second payment;
// the unique index on payments.ticket_id is the backstop.
func ConfirmPayment(ticketID uint, clientID uint, paymentType string, reference string) (*models.Payment, error) {
	var payment *models.Payment
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		payment, err = confirmOnce(ticketID, clientID, paymentType, reference)
		if err == nil || !isRetryable(err) {
			return payment, err
		}
		log.Printf("ConfirmPayment attempt %d for Ticket [%d] hit a write conflict: %s\n", attempt, ticketID, err.Error())
	}
	return nil, err
}

func confirmOnce(ticketID uint, clientID uint, paymentType string, reference string) (*models.Payment, error) {
	var payment models.Payment
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.Where(&models.Ticket{ID: ticketID, ClientID: clientID}).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: ticket [%d]", ErrNotFound, ticketID)
			}
			return err
		}
		if !ticket.Status.CanTransition(models.TICKET_CONFIRMED) {
			return fmt.Errorf("%w: ticket payment already processed", ErrInvalidState)
		}
		res := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND status = ?", ticketID, models.TICKET_PENDING).
			Update("status", models.TICKET_CONFIRMED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: ticket payment already processed", ErrInvalidState)
		}
		payment = models.Payment{
			TicketID:  ticketID,
			ClientID:  clientID,
			Amount:    ticket.Price * float64(ticket.Count),
			Status:    types.PAYMENT_COMPLETED,
			Type:      paymentType,
			Reference: reference,
			PaidAt:    time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Cancel voids a ticket and restores its count to the event inventory. The
// status-conditional UPDATE guarantees the restore runs at most once per
// ticket; cancelling an already-cancelled ticket is rejected, not ignored.
// A confirmed ticket may still be cancelled: its payment flips to refunded
// in the same transaction.
func Cancel(ticketID uint, clientID uint) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = cancelOnce(ticketID, clientID)
		if err == nil || !isRetryable(err) {
			return err
		}
		log.Printf("Cancel attempt %d for Ticket [%d] hit a write conflict: %s\n", attempt, ticketID, err.Error())
	}
	return err
}

func cancelOnce(ticketID uint, clientID uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.
			Where(&models.Ticket{ID: ticketID, ClientID: clientID}).
			Preload("Event").
			First(&ticket).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: ticket [%d]", ErrNotFound, ticketID)
			}
			return err
		}
		if !ticket.Status.CanTransition(models.TICKET_CANCELLED) {
			return fmt.Errorf("%w: ticket already cancelled", ErrInvalidState)
		}
		if !ticket.Event.StartDate.After(time.Now().Add(CancelCutoff)) {
			return fmt.Errorf("%w: cannot cancel tickets within 24 hours of event start", ErrInvalidState)
		}
		res := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND status <> ?", ticketID, models.TICKET_CANCELLED).
			Update("status", models.TICKET_CANCELLED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: ticket already cancelled", ErrInvalidState)
		}
		if err := tx.
			Model(&models.Event{}).
			Where("id = ?", ticket.EventID).
			UpdateColumn("available_tickets", gorm.Expr("available_tickets + ?", ticket.Count)).
			Error; err != nil {
			return err
		}
		// No-op for pending tickets; refunds the payment of a confirmed one.
		if err := tx.
			Model(&models.Payment{}).
			Where("ticket_id = ?", ticketID).
			Update("status", types.PAYMENT_REFUNDED).
			Error; err != nil {
			return err
		}
		return nil
	})
}

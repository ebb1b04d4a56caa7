package common

import (
	"sync"
	"testing"
	"time"

	"planngo/src/db"
	"planngo/src/models"
	"planngo/src/types"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	DB       *gorm.DB
	ClientID uint
	EventID  uint
}

// newFixture opens a fresh in-memory database with one client and one
// approved event that has 10 tickets at 100.00 each, starting in 72 hours.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	inner, err := gdb.DB()
	require.NoError(t, err)
	inner.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Organizer{},
		&models.Venue{},
		&models.Event{},
		&models.Ticket{},
		&models.Payment{},
	))
	db.NewDB(gdb)

	user := models.User{Name: "Alice Brown", Email: "alice@example.com", Role: string(types.ROLE_CLIENT)}
	require.NoError(t, gdb.Create(&user).Error)
	client := models.Client{UserID: user.ID}
	require.NoError(t, gdb.Create(&client).Error)

	orgUser := models.User{Name: "John Smith", Email: "john@example.com", Role: string(types.ROLE_ORGANIZER)}
	require.NoError(t, gdb.Create(&orgUser).Error)
	organizer := models.Organizer{UserID: orgUser.ID, IsVerified: true}
	require.NoError(t, gdb.Create(&organizer).Error)

	venue := models.Venue{VenueName: "Grand Convention Center", Location: "Mumbai, Maharashtra", Capacity: 1000, IsAvailable: true}
	require.NoError(t, gdb.Create(&venue).Error)

	event := models.Event{
		Title:            "Tech Innovation Summit",
		Category:         "Technology",
		Description:      "Annual summit",
		Location:         venue.Location,
		StartDate:        time.Now().Add(72 * time.Hour),
		EndDate:          time.Now().Add(74 * time.Hour),
		IsApproved:       true,
		TicketPrice:      100,
		AvailableTickets: 10,
		VenueID:          venue.ID,
		OrganizerID:      organizer.ID,
	}
	require.NoError(t, gdb.Create(&event).Error)

	return &fixture{DB: gdb, ClientID: client.ID, EventID: event.ID}
}

func (f *fixture) availableTickets(t *testing.T) uint {
	t.Helper()
	var event models.Event
	require.NoError(t, f.DB.First(&event, f.EventID).Error)
	return event.AvailableTickets
}

func (f *fixture) setStartDate(t *testing.T, start time.Time) {
	t.Helper()
	require.NoError(t, f.DB.
		Model(&models.Event{}).
		Where("id = ?", f.EventID).
		Update("start_date", start).Error)
}

func TestReserveDecrementsInventory(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 7)
	require.NoError(t, err)
	require.Equal(t, models.TICKET_PENDING, ticket.Status)
	require.Equal(t, uint(7), ticket.Count)
	require.Equal(t, float64(100), ticket.Price)
	require.Equal(t, uint(3), f.availableTickets(t))

	_, err = Reserve(f.EventID, f.ClientID, 5)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	require.Equal(t, uint(3), f.availableTickets(t))

	_, err = Reserve(f.EventID, f.ClientID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(0), f.availableTickets(t))

	_, err = Reserve(f.EventID, f.ClientID, 1)
	require.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestReserveConcurrentNeverOversells(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := Reserve(f.EventID, f.ClientID, 3)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientInventory)
	}
	require.Equal(t, 3, succeeded)

	var reserved int64
	require.NoError(t, f.DB.
		Model(&models.Ticket{}).
		Select("COALESCE(SUM(count), 0)").
		Where("status <> ?", models.TICKET_CANCELLED).
		Scan(&reserved).Error)
	require.LessOrEqual(t, reserved, int64(10))
	require.EqualValues(t, 10, uint(reserved)+f.availableTickets(t))
}

func TestReserveFailureLeavesNoTicket(t *testing.T) {
	f := newFixture(t)

	_, err := Reserve(f.EventID, f.ClientID, 11)
	require.ErrorIs(t, err, ErrInsufficientInventory)

	var count int64
	require.NoError(t, f.DB.Model(&models.Ticket{}).Count(&count).Error)
	require.Zero(t, count)
	require.Equal(t, uint(10), f.availableTickets(t))
}

func TestReserveRejectsUnapprovedEvent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.DB.
		Model(&models.Event{}).
		Where("id = ?", f.EventID).
		Update("is_approved", false).Error)

	_, err := Reserve(f.EventID, f.ClientID, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReserveRejectsPastEvent(t *testing.T) {
	f := newFixture(t)
	f.setStartDate(t, time.Now().Add(-time.Hour))

	_, err := Reserve(f.EventID, f.ClientID, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReserveUnknownRecords(t *testing.T) {
	f := newFixture(t)

	_, err := Reserve(f.EventID, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = Reserve(999, f.ClientID, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmPaymentRecordsSinglePayment(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 2)
	require.NoError(t, err)

	payment, err := ConfirmPayment(ticket.ID, f.ClientID, "card", "pi_123")
	require.NoError(t, err)
	require.Equal(t, float64(200), payment.Amount)
	require.Equal(t, types.PAYMENT_COMPLETED, payment.Status)
	require.Equal(t, "card", payment.Type)

	var confirmed models.Ticket
	require.NoError(t, f.DB.First(&confirmed, ticket.ID).Error)
	require.Equal(t, models.TICKET_CONFIRMED, confirmed.Status)

	_, err = ConfirmPayment(ticket.ID, f.ClientID, "card", "pi_456")
	require.ErrorIs(t, err, ErrInvalidState)

	var payments int64
	require.NoError(t, f.DB.Model(&models.Payment{}).Where("ticket_id = ?", ticket.ID).Count(&payments).Error)
	require.EqualValues(t, 1, payments)
}

func TestConfirmPaymentRequiresOwner(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 1)
	require.NoError(t, err)

	_, err = ConfirmPayment(ticket.ID, 999, "cash", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelRestoresInventoryOnce(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 4)
	require.NoError(t, err)
	require.Equal(t, uint(6), f.availableTickets(t))

	require.NoError(t, Cancel(ticket.ID, f.ClientID))
	require.Equal(t, uint(10), f.availableTickets(t))

	var cancelled models.Ticket
	require.NoError(t, f.DB.First(&cancelled, ticket.ID).Error)
	require.Equal(t, models.TICKET_CANCELLED, cancelled.Status)

	err = Cancel(ticket.ID, f.ClientID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, uint(10), f.availableTickets(t))
}

func TestCancelConfirmedRefundsPayment(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 3)
	require.NoError(t, err)
	_, err = ConfirmPayment(ticket.ID, f.ClientID, "card", "pi_789")
	require.NoError(t, err)

	require.NoError(t, Cancel(ticket.ID, f.ClientID))
	require.Equal(t, uint(10), f.availableTickets(t))

	var payment models.Payment
	require.NoError(t, f.DB.Where("ticket_id = ?", ticket.ID).First(&payment).Error)
	require.Equal(t, types.PAYMENT_REFUNDED, payment.Status)
}

func TestCancelCutoff(t *testing.T) {
	f := newFixture(t)

	ticket, err := Reserve(f.EventID, f.ClientID, 1)
	require.NoError(t, err)

	f.setStartDate(t, time.Now().Add(12*time.Hour))
	err = Cancel(ticket.ID, f.ClientID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, uint(9), f.availableTickets(t))

	f.setStartDate(t, time.Now().Add(48*time.Hour))
	require.NoError(t, Cancel(ticket.ID, f.ClientID))
	require.Equal(t, uint(10), f.availableTickets(t))
}

func TestCancelUnknownTicket(t *testing.T) {
	f := newFixture(t)

	err := Cancel(999, f.ClientID)
	require.ErrorIs(t, err, ErrNotFound)
}

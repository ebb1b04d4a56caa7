package mailer

import (
	"fmt"
	"log"
	"os"
	"planngo/src/lib"
	"planngo/src/models"
)

func send(input *lib.SendMailInput) {
	go func() {
		if err := lib.SendMail(input); err != nil {
			log.Printf("Failed to send email to %v: %s\n", input.To, err.Error())
		}
	}()
}

func sender() (string, string) {
	return os.Getenv("MAIL_FROM"), os.Getenv("MAIL_FROM_NAME")
}

// SendBookingConfirmation notifies a client that their payment went through.
func SendBookingConfirmation(to string, ticket *models.Ticket, event *models.Event) {
	from, fromName := sender()
	body := fmt.Sprintf(
		"<p>Your booking for <b>%s</b> is confirmed.</p><p>Tickets: %d<br>Total paid: %.2f</p><p>Event starts %s at %s.</p>",
		event.Title,
		ticket.Count,
		ticket.Price*float64(ticket.Count),
		event.StartDate.Format("Jan 2, 2006 15:04"),
		event.Location,
	)
	send(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Booking confirmed: %s", event.Title),
		Body:     body,
		Html:     true,
	})
}

// SendBookingCancellation notifies a client that their tickets were voided.
func SendBookingCancellation(to string, ticket *models.Ticket, event *models.Event) {
	from, fromName := sender()
	body := fmt.Sprintf(
		"<p>Your booking for <b>%s</b> (%d tickets) has been cancelled.</p><p>Any completed payment will be refunded.</p>",
		event.Title,
		ticket.Count,
	)
	send(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  fmt.Sprintf("Booking cancelled: %s", event.Title),
		Body:     body,
		Html:     true,
	})
}

// SendEventDecision notifies an organizer of an approval or rejection.
func SendEventDecision(to string, event *models.Event) {
	from, fromName := sender()
	var body, subject string
	if event.IsApproved {
		subject = fmt.Sprintf("Event approved: %s", event.Title)
		body = fmt.Sprintf("<p>Your event <b>%s</b> has been approved and is now open for booking.</p>", event.Title)
	} else {
		subject = fmt.Sprintf("Event rejected: %s", event.Title)
		reason := "No reason given"
		if event.RejectionReason != nil {
			reason = *event.RejectionReason
		}
		body = fmt.Sprintf("<p>Your event <b>%s</b> was rejected.</p><p>Reason: %s</p>", event.Title, reason)
	}
	send(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  subject,
		Body:     body,
		Html:     true,
	})
}

// SendOrganizerApproval notifies an organizer their account was verified.
func SendOrganizerApproval(to string, name string) {
	from, fromName := sender()
	send(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  "Your organizer account has been verified",
		Body:     fmt.Sprintf("<p>Hi %s,</p><p>Your organizer account is now verified. You can start creating events.</p>", name),
		Html:     true,
	})
}

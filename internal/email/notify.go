package email

import (
	"context"
	"errors"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/kafka"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageFromEvent decides which email, if any, a booking event triggers.
func MessageFromEvent(event kafka.BookingEvent) (Message, bool) {
	var kind Type
	switch event.Type {
	case kafka.EventBookingCreated:
		kind = TypeMagicLink
	case kafka.EventBookingStatusChanged:
		switch domain.BookingStatus(event.Status) {
		case domain.BookingStatusConfirmed:
			kind = TypeConfirmation
		case domain.BookingStatusCancelled:
			kind = TypeDecline
		default:
			return Message{}, false
		}
	default:
		return Message{}, false
	}
	if event.Email == "" {
		return Message{}, false
	}

	msg := Message{
		Email:            event.Email,
		BookingReference: event.Reference,
		MagicLink:        event.MagicLink,
		EmailType:        kind,
	}
	if d := event.Details; d != nil {
		msg.BookingDetails = &Details{
			CustomerName:   event.CustomerName,
			VehicleName:    d.VehicleName,
			PickupDate:     d.PickupDate,
			ReturnDate:     d.ReturnDate,
			PickupLocation: d.PickupLocation,
			ReturnLocation: d.ReturnLocation,
			TotalCents:     d.TotalCents,
		}
	}
	return msg, true
}

// Dispatcher turns consumed notification events into emails.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
}

func NewDispatcher(sender Sender, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Handle never fails on a single bad or undeliverable message, so one poison
// event cannot stall the consumer. A missing configuration stops the worker.
func (d *Dispatcher) Handle(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.DecodeBookingEvent(msg)
	if err != nil {
		d.log.Warn("skipping malformed notification", "error", err)
		return nil
	}

	out, ok := MessageFromEvent(event)
	if !ok {
		d.log.Debug("no email for event", "type", event.Type, "status", event.Status, "reference", event.Reference)
		return nil
	}

	receipt, err := d.sender.Send(ctx, out)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return err
		}
		d.log.Error("email delivery failed", "reference", event.Reference, "email_type", out.EmailType, "error", err)
		return nil
	}

	d.log.Info("email sent", "reference", event.Reference, "email_type", out.EmailType, "message_id", receipt.MessageID)
	return nil
}

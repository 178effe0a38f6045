// Package email delivers booking notifications: the magic link after a
// booking is placed, and the confirmation or decline after an admin decision.
package email

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	TypeMagicLink    Type = "magic_link"
	TypeConfirmation Type = "confirmation"
	TypeDecline      Type = "decline"
)

var ErrDelivery = errors.New("email delivery failed")

type Details struct {
	CustomerName   string    `json:"customerName,omitempty"`
	VehicleName    string    `json:"vehicleName,omitempty"`
	PickupDate     time.Time `json:"pickupDate"`
	ReturnDate     time.Time `json:"returnDate"`
	PickupLocation string    `json:"pickupLocation,omitempty"`
	ReturnLocation string    `json:"returnLocation,omitempty"`
	TotalCents     int64     `json:"totalCents"`
}

type Message struct {
	Email            string   `json:"email"`
	BookingReference string   `json:"bookingReference"`
	MagicLink        string   `json:"magicLink"`
	BookingDetails   *Details `json:"bookingDetails,omitempty"`
	EmailType        Type     `json:"emailType"`
}

type Receipt struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

package email

import (
	"context"
	"fmt"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender renders the message locally and delivers it through SendGrid.
type SendGridSender struct {
	client    sendGridClient
	fromEmail string
	fromName  string
}

var _ Sender = (*SendGridSender)(nil)

func NewSendGridSender(apiKey, fromEmail, fromName string) (*SendGridSender, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("%w: sendgrid api key or from address missing", domain.ErrConfig)
	}
	if fromName == "" {
		fromName = "AR Car Rentals"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	body, err := render(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	toName := ""
	if msg.BookingDetails != nil {
		toName = msg.BookingDetails.CustomerName
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, msg.Email)
	message := mail.NewSingleEmail(from, body.Subject, to, body.Plain, body.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: sendgrid: %v", ErrDelivery, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("%w: sendgrid status %d: %s", ErrDelivery, response.StatusCode, response.Body)
	}

	receipt := Receipt{Success: true}
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		receipt.MessageID = ids[0]
	}
	return receipt, nil
}

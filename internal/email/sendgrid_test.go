package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendGrid struct {
	sent     *mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.sent = m
	return f.response, f.err
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	_, err := NewSendGridSender("", "noreply@example.com", "")
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

func TestSendGridSender_Send(t *testing.T) {
	fake := &fakeSendGrid{response: &rest.Response{
		StatusCode: 202,
		Headers:    map[string][]string{"X-Message-Id": {"sg-123"}},
	}}
	s := &SendGridSender{client: fake, fromEmail: "noreply@arcarrentals.example", fromName: "AR Car Rentals"}

	receipt, err := s.Send(context.Background(), Message{
		Email:            "ana@example.com",
		BookingReference: "ARC-0A1B2C3D4E",
		MagicLink:        "https://arcarrentals.example/track/ARC-0A1B2C3D4E?token=t&x=1",
		EmailType:        TypeMagicLink,
		BookingDetails: &Details{
			CustomerName: "Ana Cruz",
			VehicleName:  "Toyota Vios 2022",
			PickupDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ReturnDate:   time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sg-123", receipt.MessageID)

	require.NotNil(t, fake.sent)
	assert.Equal(t, "Your AR Car Rentals booking ARC-0A1B2C3D4E", fake.sent.Subject)
	require.Len(t, fake.sent.Personalizations, 1)
	assert.Equal(t, "ana@example.com", fake.sent.Personalizations[0].To[0].Address)
	assert.Equal(t, "Ana Cruz", fake.sent.Personalizations[0].To[0].Name)

	require.Len(t, fake.sent.Content, 2)
	assert.Contains(t, fake.sent.Content[0].Value, "Pickup: Mar 1, 2026")
	assert.Contains(t, fake.sent.Content[1].Value, "token=t&amp;x=1")
}

func TestSendGridSender_NonSuccessStatus(t *testing.T) {
	fake := &fakeSendGrid{response: &rest.Response{StatusCode: 401, Body: "bad key"}}
	s := &SendGridSender{client: fake, fromEmail: "noreply@arcarrentals.example"}

	_, err := s.Send(context.Background(), Message{EmailType: TypeDecline, BookingReference: "ARC-1"})
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Contains(t, err.Error(), "bad key")
}

func TestRender_UnknownType(t *testing.T) {
	_, err := render(Message{EmailType: "newsletter"})
	assert.Error(t, err)
}

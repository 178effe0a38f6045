package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostedClient_Send(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"messageId":"msg-1"}`))
	}))
	defer srv.Close()

	c := NewHostedClient(srv.URL, "key", time.Second)
	receipt, err := c.Send(context.Background(), Message{
		Email:            "ana@example.com",
		BookingReference: "ARC-0A1B2C3D4E",
		MagicLink:        "https://arcarrentals.example/track/ARC-0A1B2C3D4E?token=t",
		EmailType:        TypeMagicLink,
	})
	require.NoError(t, err)

	assert.Equal(t, Receipt{Success: true, MessageID: "msg-1"}, receipt)
	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, "ana@example.com", got["email"])
	assert.Equal(t, "ARC-0A1B2C3D4E", got["bookingReference"])
	assert.Equal(t, "magic_link", got["emailType"])
	assert.NotContains(t, got, "bookingDetails")
}

func TestHostedClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":"provider unavailable"}`))
	}))
	defer srv.Close()

	_, err := NewHostedClient(srv.URL, "key", time.Second).Send(context.Background(), Message{EmailType: TypeDecline})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Contains(t, err.Error(), "provider unavailable")
}

func TestHostedClient_UnsuccessfulReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid recipient"}`))
	}))
	defer srv.Close()

	receipt, err := NewHostedClient(srv.URL, "key", time.Second).Send(context.Background(), Message{EmailType: TypeConfirmation})
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.False(t, receipt.Success)
}

func TestHostedClient_MissingConfig(t *testing.T) {
	_, err := NewHostedClient("", "", time.Second).Send(context.Background(), Message{})
	assert.True(t, errors.Is(err, domain.ErrConfig))
}

package kafka

import "time"

const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
)

type BookingEvent struct {
	Type         string          `json:"type"`
	BookingID    int64           `json:"booking_id"`
	Reference    string          `json:"reference"`
	Email        string          `json:"email"`
	CustomerName string          `json:"customer_name,omitempty"`
	Status       string          `json:"status"`
	MagicLink    string          `json:"magic_link,omitempty"`
	Details      *BookingDetails `json:"details,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type BookingDetails struct {
	VehicleName    string    `json:"vehicle_name"`
	PickupDate     time.Time `json:"pickup_date"`
	ReturnDate     time.Time `json:"return_date"`
	PickupLocation string    `json:"pickup_location"`
	ReturnLocation string    `json:"return_location,omitempty"`
	TotalCents     int64     `json:"total_cents"`
}

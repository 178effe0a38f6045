package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var BookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusActive,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

func (s BookingStatus) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseBookingStatus accepts any casing and surrounding whitespace.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, raw)
	}
	return status, nil
}

type Booking struct {
	ID              int64            `json:"id"`
	Reference       string           `json:"reference"`
	AccessToken     string           `json:"-"`
	CustomerID      int64            `json:"customer_id"`
	VehicleID       int64            `json:"vehicle_id"`
	PickupDate      time.Time        `json:"pickup_date"`
	ReturnDate      time.Time        `json:"return_date"`
	PickupLocation  string           `json:"pickup_location"`
	ReturnLocation  string           `json:"return_location"`
	Status          BookingStatus    `json:"status"`
	TotalCents      int64            `json:"total_cents"`
	PaymentMethod   string           `json:"payment_method"`
	PaymentProofURL string           `json:"payment_proof_url,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Customer        *CustomerSummary `json:"customer,omitempty"`
	Vehicle         *VehicleSummary  `json:"vehicle,omitempty"`
}

type CustomerSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type VehicleSummary struct {
	ID    int64  `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

func (v VehicleSummary) DisplayName() string {
	name := strings.TrimSpace(v.Make + " " + v.Model)
	if v.Year > 0 {
		return fmt.Sprintf("%s %d", name, v.Year)
	}
	return name
}

type BookingStats struct {
	Total        int   `json:"total"`
	Pending      int   `json:"pending"`
	Confirmed    int   `json:"confirmed"`
	Active       int   `json:"active"`
	Completed    int   `json:"completed"`
	Cancelled    int   `json:"cancelled"`
	RevenueCents int64 `json:"revenue_cents"`
}

// ComputeStats is a single pass over every row. Cancelled bookings are counted
// but excluded from revenue.
func ComputeStats(bookings []Booking) BookingStats {
	var stats BookingStats
	for _, b := range bookings {
		stats.Total++
		switch b.Status {
		case BookingStatusPending:
			stats.Pending++
		case BookingStatusConfirmed:
			stats.Confirmed++
		case BookingStatusActive:
			stats.Active++
		case BookingStatusCompleted:
			stats.Completed++
		case BookingStatusCancelled:
			stats.Cancelled++
			continue
		}
		stats.RevenueCents += b.TotalCents
	}
	return stats
}

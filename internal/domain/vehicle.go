package domain

import (
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/gallery"
)

type Vehicle struct {
	ID             int64           `json:"id"`
	Make           string          `json:"make"`
	Model          string          `json:"model"`
	Year           int             `json:"year"`
	Category       string          `json:"category"`
	Transmission   string          `json:"transmission"`
	Seats          int             `json:"seats"`
	DailyRateCents int64           `json:"daily_rate_cents"`
	Available      bool            `json:"available"`
	Images         gallery.Gallery `json:"images"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (v Vehicle) Summary() VehicleSummary {
	return VehicleSummary{ID: v.ID, Make: v.Make, Model: v.Model, Year: v.Year}
}

// Public drops images that never reached the hosted store.
func (v Vehicle) Public() Vehicle {
	v.Images = v.Images.Committed()
	return v
}

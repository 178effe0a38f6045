package domain

import (
	"strings"
	"time"
)

type Review struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	VehicleID    *int64    `json:"vehicle_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r Review) HasPhoto() bool {
	return strings.TrimSpace(r.PhotoURL) != ""
}

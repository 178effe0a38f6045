package funnel

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("funnel: session not found")
	// ErrSessionUnavailable is returned when saving a session the store
	// could not load. Writing it would overwrite the stored progress.
	ErrSessionUnavailable = errors.New("funnel: session was not loaded")
)

// Draft is what the visitor has typed so far. It lives only in the session
// store and never reaches the bookings table until checkout.
type Draft struct {
	VehicleID      int64     `json:"vehicle_id,omitempty"`
	PickupDate     time.Time `json:"pickup_date"`
	ReturnDate     time.Time `json:"return_date"`
	PickupLocation string    `json:"pickup_location,omitempty"`
	ReturnLocation string    `json:"return_location,omitempty"`
	CustomerName   string    `json:"customer_name,omitempty"`
	CustomerEmail  string    `json:"customer_email,omitempty"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

func (d Draft) HasDates() bool {
	return !d.PickupDate.IsZero() && !d.ReturnDate.IsZero()
}

type Session struct {
	ID        string    `json:"id"`
	Progress  Step      `json:"progress"`
	Draft     Draft     `json:"draft"`
	Reference string    `json:"reference,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// unloaded marks a placeholder used after a failed store read.
	unloaded bool
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Advance never moves progress backwards. It reports whether progress changed.
func (s *Session) Advance(step Step) bool {
	if step <= s.Progress {
		return false
	}
	s.Progress = step
	return true
}

// Loaded is false for the placeholder attached when the store could not be read.
func (s *Session) Loaded() bool {
	return !s.unloaded
}

func (s *Session) Reset() {
	s.Progress = NoProgress
	s.Draft = Draft{}
	s.Reference = ""
}

type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

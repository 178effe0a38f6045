package booking

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/kafka"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/validation"
	"github.com/google/uuid"
)

const (
	DefaultRecentLimit = 5
	MaxRecentLimit     = 100
)

type BookingUseCase interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	RecentBookings(ctx context.Context, limit int) ([]domain.Booking, error)
	ComputeStats(ctx context.Context) (domain.BookingStats, error)
	SearchBookings(ctx context.Context, query string, status *domain.BookingStatus) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	TrackBooking(ctx context.Context, reference, token string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	customers          repository.CustomerRepository
	producer           Producer
	validator          *validation.Validator
	bookingTopic       string
	notificationsTopic string
	publicURL          string
	recentDefault      int
	newReference       func() string
	newToken           func() string
	now                func() time.Time
	log                *logger.Logger
}

type CreateBookingInput struct {
	VehicleID       int64     `json:"vehicle_id" validate:"required,gt=0"`
	CustomerName    string    `json:"customer_name" validate:"required,max=120"`
	CustomerEmail   string    `json:"customer_email" validate:"required,email"`
	CustomerPhone   string    `json:"customer_phone" validate:"required,min=7,max=32"`
	PickupDate      time.Time `json:"pickup_date" validate:"required"`
	ReturnDate      time.Time `json:"return_date" validate:"required"`
	PickupLocation  string    `json:"pickup_location" validate:"required,max=200"`
	ReturnLocation  string    `json:"return_location" validate:"max=200"`
	TotalCents      int64     `json:"total_cents" validate:"gte=0"`
	PaymentMethod   string    `json:"payment_method" validate:"required,oneof=cash bank_transfer gcash card_on_pickup"`
	PaymentProofURL string    `json:"payment_proof_url"`
	Notes           string    `json:"notes" validate:"max=1000"`
}

func (in *CreateBookingInput) normalize() {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.PickupLocation = strings.TrimSpace(in.PickupLocation)
	in.ReturnLocation = strings.TrimSpace(in.ReturnLocation)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	in.Notes = strings.TrimSpace(in.Notes)
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithPublicURL sets the site origin used to build magic links.
func WithPublicURL(publicURL string) BookingServiceOption {
	return func(s *BookingService) {
		s.publicURL = strings.TrimRight(publicURL, "/")
	}
}

func WithRecentDefault(limit int) BookingServiceOption {
	return func(s *BookingService) {
		if limit > 0 {
			s.recentDefault = limit
		}
	}
}

func WithReferenceGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newReference = gen
	}
}

func WithTokenGenerator(gen func() string) BookingServiceOption {
	return func(s *BookingService) {
		s.newToken = gen
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log *logger.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	customers repository.CustomerRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		customers:     customers,
		producer:      producer,
		validator:     validation.New(),
		bookingTopic:  bookingTopic,
		recentDefault: DefaultRecentLimit,
		newReference:  NewReference,
		newToken:      uuid.NewString,
		now:           time.Now,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// NewReference returns "ARC-" followed by ten uppercase hex digits taken from
// the random part of a v4 UUID.
func NewReference() string {
	id := uuid.New()
	return "ARC-" + strings.ToUpper(hex.EncodeToString(id[:5]))
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return nil, wrapFetch("ListBookings", err)
	}
	return bookings, nil
}

func (s *BookingService) RecentBookings(ctx context.Context, limit int) ([]domain.Booking, error) {
	if limit <= 0 {
		limit = s.recentDefault
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{Limit: uint64(limit)})
	if err != nil {
		return nil, wrapFetch("RecentBookings", err)
	}
	return bookings, nil
}

// ComputeStats loads every booking and aggregates in memory. Cost grows
// linearly with the table.
func (s *BookingService) ComputeStats(ctx context.Context) (domain.BookingStats, error) {
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{})
	if err != nil {
		return domain.BookingStats{}, wrapFetch("ComputeStats", err)
	}
	return domain.ComputeStats(bookings), nil
}

func (s *BookingService) SearchBookings(ctx context.Context, query string, status *domain.BookingStatus) ([]domain.Booking, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, *status)
	}
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{
		Status:            status,
		ReferenceContains: query,
	})
	if err != nil {
		return nil, wrapFetch("SearchBookings", err)
	}
	return bookings, nil
}

// CreateBooking upserts the customer and then inserts the booking. The two
// writes are not atomic: if the insert fails the customer row stays behind.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.normalize()
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if !input.ReturnDate.After(input.PickupDate) {
		return nil, validation.Fail("ReturnDate", "must be after the pickup date")
	}

	customer, err := s.upsertCustomer(ctx, input)
	if err != nil {
		return nil, err
	}

	returnLocation := input.ReturnLocation
	if returnLocation == "" {
		returnLocation = input.PickupLocation
	}
	booking := &domain.Booking{
		Reference:       s.newReference(),
		AccessToken:     s.newToken(),
		CustomerID:      customer.ID,
		VehicleID:       input.VehicleID,
		PickupDate:      input.PickupDate,
		ReturnDate:      input.ReturnDate,
		PickupLocation:  input.PickupLocation,
		ReturnLocation:  returnLocation,
		Status:          domain.BookingStatusPending,
		TotalCents:      input.TotalCents,
		PaymentMethod:   input.PaymentMethod,
		PaymentProofURL: input.PaymentProofURL,
		Notes:           input.Notes,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		s.log.Warn("booking insert failed after customer write", "customer_id", customer.ID, "error", err)
		return nil, fmt.Errorf("%w: CreateBooking - insert booking: %v", domain.ErrWrite, err)
	}

	created, err := s.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("reload of created booking failed", "reference", booking.Reference, "error", err)
		summary := customer.Summary()
		booking.Customer = &summary
		created = booking
	}
	created.AccessToken = booking.AccessToken

	if err := s.publish(ctx, kafka.EventBookingCreated, created); err != nil {
		s.log.Warn("failed to publish booking event", "type", kafka.EventBookingCreated, "reference", created.Reference, "error", err)
	}
	return created, nil
}

func (s *BookingService) upsertCustomer(ctx context.Context, input CreateBookingInput) (*domain.Customer, error) {
	existing, err := s.customers.FindByEmailOrPhone(ctx, input.CustomerEmail, input.CustomerPhone)
	switch {
	case err == nil:
		existing.FullName = input.CustomerName
		existing.Email = input.CustomerEmail
		existing.Phone = input.CustomerPhone
		if err := s.customers.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("%w: CreateBooking - update customer: %v", domain.ErrWrite, err)
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		customer := &domain.Customer{
			FullName: input.CustomerName,
			Email:    input.CustomerEmail,
			Phone:    input.CustomerPhone,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, fmt.Errorf("%w: CreateBooking - insert customer: %v", domain.ErrWrite, err)
		}
		return customer, nil
	default:
		return nil, fmt.Errorf("%w: CreateBooking - find customer: %v", domain.ErrFetch, err)
	}
}

// UpdateBookingStatus overwrites the status. Any of the five statuses may
// follow any other.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, status)
	}
	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: UpdateBookingStatus - update: %v", domain.ErrWrite, err)
	}

	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, wrapFetch("UpdateBookingStatus", err)
	}

	if err := s.publish(ctx, kafka.EventBookingStatusChanged, updated); err != nil {
		s.log.Warn("failed to publish booking event", "type", kafka.EventBookingStatusChanged, "reference", updated.Reference, "error", err)
	}
	return updated, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		return fmt.Errorf("%w: DeleteBooking - delete: %v", domain.ErrWrite, err)
	}
	return nil
}

// TrackBooking resolves a magic link. A wrong token looks exactly like an
// unknown reference.
func (s *BookingService) TrackBooking(ctx context.Context, reference, token string) (*domain.Booking, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if reference == "" || token == "" {
		return nil, fmt.Errorf("%w: booking reference and token are required", domain.ErrValidation)
	}
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, wrapFetch("TrackBooking", err)
	}
	if subtle.ConstantTimeCompare([]byte(booking.AccessToken), []byte(token)) != 1 {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, reference)
	}
	return booking, nil
}

func (s *BookingService) MagicLink(reference, token string) string {
	return fmt.Sprintf("%s/track/%s?token=%s", s.publicURL, url.PathEscape(reference), url.QueryEscape(token))
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil {
		return nil
	}

	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		Status:     string(booking.Status),
		OccurredAt: s.now().UTC(),
		Details: &kafka.BookingDetails{
			PickupDate:     booking.PickupDate,
			ReturnDate:     booking.ReturnDate,
			PickupLocation: booking.PickupLocation,
			ReturnLocation: booking.ReturnLocation,
			TotalCents:     booking.TotalCents,
		},
	}
	if booking.Customer != nil {
		event.Email = booking.Customer.Email
		event.CustomerName = booking.Customer.FullName
	}
	if booking.Vehicle != nil {
		event.Details.VehicleName = booking.Vehicle.DisplayName()
	}
	if booking.AccessToken != "" {
		event.MagicLink = s.MagicLink(booking.Reference, booking.AccessToken)
	}

	if s.bookingTopic != "" {
		if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
			return err
		}
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			return err
		}
	}
	return nil
}

func wrapFetch(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrFetch) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrFetch, op, err)
}

var _ BookingUseCase = (*BookingService)(nil)

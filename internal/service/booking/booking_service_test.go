package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/kafka"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, email, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func newTestService(bookings *MockBookingRepository, customers *MockCustomerRepository, producer *MockProducer) *BookingService {
	return NewBookingService(bookings, customers, producer, "bookings",
		WithNotificationsTopic("notifications"),
		WithPublicURL("https://arcarrentals.example/"),
		WithReferenceGenerator(func() string { return "ARC-0A1B2C3D4E" }),
		WithTokenGenerator(func() string { return "tok-1" }),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		VehicleID:      9,
		CustomerName:   " Ana Cruz ",
		CustomerEmail:  "Ana@Example.com",
		CustomerPhone:  "+639171234567",
		PickupDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:     time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		PickupLocation: "Airport",
		TotalCents:     750000,
		PaymentMethod:  "gcash",
	}
}

func TestNewReference_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ARC-[0-9A-F]{10}$`)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		ref := NewReference()
		require.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	assert.Len(t, seen, 1000)
}

func TestBookingService_CreateBooking_NewCustomer(t *testing.T) {
	bookings := &MockBookingRepository{}
	customers := &MockCustomerRepository{}
	producer := &MockProducer{}
	s := newTestService(bookings, customers, producer)
	ctx := context.Background()

	customers.On("FindByEmailOrPhone", ctx, "ana@example.com", "+639171234567").Return(nil, domain.ErrNotFound)
	customers.On("Create", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.FullName == "Ana Cruz" && c.Email == "ana@example.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Customer).ID = 4
	}).Return(nil)

	bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Reference == "ARC-0A1B2C3D4E" && b.AccessToken == "tok-1" && b.CustomerID == 4 &&
			b.Status == domain.BookingStatusPending && b.ReturnLocation == "Airport"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 77
	}).Return(nil)

	stored := &domain.Booking{
		ID:          77,
		Reference:   "ARC-0A1B2C3D4E",
		AccessToken: "tok-1",
		Status:      domain.BookingStatusPending,
		Customer:    &domain.CustomerSummary{ID: 4, FullName: "Ana Cruz", Email: "ana@example.com"},
		Vehicle:     &domain.VehicleSummary{ID: 9, Make: "Toyota", Model: "Vios", Year: 2022},
	}
	bookings.On("GetByID", ctx, int64(77)).Return(stored, nil)

	isCreatedEvent := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated &&
			e.Email == "ana@example.com" &&
			e.MagicLink == "https://arcarrentals.example/track/ARC-0A1B2C3D4E?token=tok-1" &&
			e.Details.VehicleName == "Toyota Vios 2022" &&
			e.OccurredAt.Equal(fixedNow)
	})
	producer.On("Publish", ctx, "bookings", "ARC-0A1B2C3D4E", isCreatedEvent).Return(nil).Once()
	producer.On("Publish", ctx, "notifications", "ARC-0A1B2C3D4E", isCreatedEvent).Return(nil).Once()

	booking, err := s.CreateBooking(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(77), booking.ID)
	assert.Equal(t, "Toyota", booking.Vehicle.Make)

	customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestBookingService_CreateBooking_ExistingCustomerIsUpdated(t *testing.T) {
	bookings := &MockBookingRepository{}
	customers := &MockCustomerRepository{}
	s := newTestService(bookings, customers, &MockProducer{})
	s.producer = nil
	ctx := context.Background()

	existing := &domain.Customer{ID: 4, FullName: "Ana", Email: "old@example.com", Phone: "+639171234567"}
	customers.On("FindByEmailOrPhone", ctx, "ana@example.com", "+639171234567").Return(existing, nil)
	customers.On("Update", ctx, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.ID == 4 && c.FullName == "Ana Cruz" && c.Email == "ana@example.com"
	})).Return(nil)
	bookings.On("Create", ctx, mock.Anything).Return(nil)
	bookings.On("GetByID", ctx, int64(0)).Return(&domain.Booking{Reference: "ARC-0A1B2C3D4E"}, nil)

	_, err := s.CreateBooking(ctx, validInput())
	require.NoError(t, err)
	customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	customers.AssertExpectations(t)
}

func TestBookingService_CreateBooking_BookingInsertFailsLeavesCustomer(t *testing.T) {
	bookings := &MockBookingRepository{}
	customers := &MockCustomerRepository{}
	producer := &MockProducer{}
	s := newTestService(bookings, customers, producer)
	ctx := context.Background()

	customers.On("FindByEmailOrPhone", ctx, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	customers.On("Create", ctx, mock.Anything).Return(nil)
	bookings.On("Create", ctx, mock.Anything).Return(errors.New("vehicle_id violates foreign key"))

	booking, err := s.CreateBooking(ctx, validInput())
	assert.Nil(t, booking)
	assert.True(t, errors.Is(err, domain.ErrWrite))
	producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_Validation(t *testing.T) {
	s := newTestService(&MockBookingRepository{}, &MockCustomerRepository{}, &MockProducer{})

	in := validInput()
	in.CustomerEmail = "not-an-email"
	_, err := s.CreateBooking(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	in = validInput()
	in.ReturnDate = in.PickupDate
	_, err = s.CreateBooking(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	in = validInput()
	in.PaymentMethod = "crypto"
	_, err = s.CreateBooking(context.Background(), in)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestBookingService_CreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	bookings := &MockBookingRepository{}
	customers := &MockCustomerRepository{}
	producer := &MockProducer{}
	s := newTestService(bookings, customers, producer)
	ctx := context.Background()

	customers.On("FindByEmailOrPhone", ctx, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	customers.On("Create", ctx, mock.Anything).Return(nil)
	bookings.On("Create", ctx, mock.Anything).Return(nil)
	bookings.On("GetByID", ctx, mock.Anything).Return(nil, errors.New("conn reset"))
	producer.On("Publish", ctx, "bookings", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	booking, err := s.CreateBooking(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "ARC-0A1B2C3D4E", booking.Reference)
	require.NotNil(t, booking.Customer)
	assert.Equal(t, "ana@example.com", booking.Customer.Email)
}

func TestBookingService_RecentBookings_Limits(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})
	ctx := context.Background()

	bookings.On("List", ctx, repository.BookingFilter{Limit: 5}).Return([]domain.Booking{}, nil).Once()
	bookings.On("List", ctx, repository.BookingFilter{Limit: 100}).Return([]domain.Booking{}, nil).Once()
	bookings.On("List", ctx, repository.BookingFilter{Limit: 12}).Return([]domain.Booking{}, nil).Once()

	for _, limit := range []int{0, 1000, 12} {
		_, err := s.RecentBookings(ctx, limit)
		require.NoError(t, err)
	}
	bookings.AssertExpectations(t)
}

func TestBookingService_ListBookings_EmptyIsNotAnError(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})

	bookings.On("List", mock.Anything, repository.BookingFilter{}).Return([]domain.Booking{}, nil)

	list, err := s.ListBookings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBookingService_ListBookings_StoreError(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})

	bookings.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := s.ListBookings(context.Background())
	assert.True(t, errors.Is(err, domain.ErrFetch))
}

func TestBookingService_ComputeStats(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})

	bookings.On("List", mock.Anything, repository.BookingFilter{}).Return([]domain.Booking{
		{Status: domain.BookingStatusConfirmed, TotalCents: 100},
		{Status: domain.BookingStatusCancelled, TotalCents: 900},
		{Status: domain.BookingStatusCompleted, TotalCents: 50},
	}, nil)

	stats, err := s.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, int64(150), stats.RevenueCents)
}

func TestBookingService_SearchBookings(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})
	ctx := context.Background()

	status := domain.BookingStatusPending
	bookings.On("List", ctx, repository.BookingFilter{Status: &status, ReferenceContains: "0a1b"}).
		Return([]domain.Booking{{Reference: "ARC-0A1B2C3D4E"}}, nil)

	found, err := s.SearchBookings(ctx, "0a1b", &status)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	bad := domain.BookingStatus("lost")
	_, err = s.SearchBookings(ctx, "", &bad)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestBookingService_UpdateBookingStatus(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	s := newTestService(bookings, &MockCustomerRepository{}, producer)
	ctx := context.Background()

	bookings.On("UpdateStatus", ctx, int64(5), domain.BookingStatusCancelled).Return(nil)
	bookings.On("GetByID", ctx, int64(5)).Return(&domain.Booking{
		ID:          5,
		Reference:   "ARC-1111111111",
		AccessToken: "tok",
		Status:      domain.BookingStatusCancelled,
		Customer:    &domain.CustomerSummary{Email: "ana@example.com"},
	}, nil)
	isChange := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingStatusChanged && e.Status == "cancelled" && e.Email == "ana@example.com"
	})
	producer.On("Publish", ctx, "bookings", "ARC-1111111111", isChange).Return(nil)
	producer.On("Publish", ctx, "notifications", "ARC-1111111111", isChange).Return(nil)

	updated, err := s.UpdateBookingStatus(ctx, 5, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, updated.Status)
	producer.AssertExpectations(t)
}

func TestBookingService_UpdateBookingStatus_Errors(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})
	ctx := context.Background()

	_, err := s.UpdateBookingStatus(ctx, 5, "refunded")
	assert.True(t, errors.Is(err, domain.ErrValidation))
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)

	bookings.On("UpdateStatus", ctx, int64(6), domain.BookingStatusActive).Return(domain.ErrNotFound)
	_, err = s.UpdateBookingStatus(ctx, 6, domain.BookingStatusActive)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	bookings.On("UpdateStatus", ctx, int64(7), domain.BookingStatusActive).Return(errors.New("deadlock"))
	_, err = s.UpdateBookingStatus(ctx, 7, domain.BookingStatusActive)
	assert.True(t, errors.Is(err, domain.ErrWrite))
}

func TestBookingService_DeleteBooking(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})
	ctx := context.Background()

	bookings.On("Delete", ctx, int64(1)).Return(nil)
	bookings.On("Delete", ctx, int64(2)).Return(domain.ErrNotFound)

	assert.NoError(t, s.DeleteBooking(ctx, 1))
	assert.True(t, errors.Is(s.DeleteBooking(ctx, 2), domain.ErrNotFound))
}

func TestBookingService_TrackBooking(t *testing.T) {
	bookings := &MockBookingRepository{}
	s := newTestService(bookings, &MockCustomerRepository{}, &MockProducer{})
	ctx := context.Background()

	bookings.On("GetByReference", ctx, "ARC-0A1B2C3D4E").Return(&domain.Booking{Reference: "ARC-0A1B2C3D4E", AccessToken: "tok-1"}, nil)

	b, err := s.TrackBooking(ctx, "arc-0a1b2c3d4e", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "ARC-0A1B2C3D4E", b.Reference)

	_, err = s.TrackBooking(ctx, "ARC-0A1B2C3D4E", "wrong")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.TrackBooking(ctx, "ARC-0A1B2C3D4E", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// memoryCustomers matches on email or phone the way the customers query does.
type memoryCustomers struct {
	rows []domain.Customer
}

func (m *memoryCustomers) FindByEmailOrPhone(_ context.Context, email, phone string) (*domain.Customer, error) {
	for _, c := range m.rows {
		if c.Email == email || (phone != "" && c.Phone == phone) {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryCustomers) Create(_ context.Context, customer *domain.Customer) error {
	customer.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *customer)
	return nil
}

func (m *memoryCustomers) Update(_ context.Context, customer *domain.Customer) error {
	for i := range m.rows {
		if m.rows[i].ID == customer.ID {
			m.rows[i] = *customer
			return nil
		}
	}
	return domain.ErrNotFound
}

type memoryBookings struct {
	rows []domain.Booking
}

func (m *memoryBookings) List(context.Context, repository.BookingFilter) ([]domain.Booking, error) {
	return append([]domain.Booking{}, m.rows...), nil
}

func (m *memoryBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	for _, b := range m.rows {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryBookings) GetByReference(_ context.Context, reference string) (*domain.Booking, error) {
	for _, b := range m.rows {
		if b.Reference == reference {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryBookings) Create(_ context.Context, booking *domain.Booking) error {
	booking.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *booking)
	return nil
}

func (m *memoryBookings) UpdateStatus(context.Context, int64, domain.BookingStatus) error {
	return nil
}

func (m *memoryBookings) Delete(context.Context, int64) error {
	return nil
}

func TestBookingService_CreateBooking_TwiceReusesCustomer(t *testing.T) {
	bookings := &memoryBookings{}
	customers := &memoryCustomers{}
	producer := &MockProducer{}
	producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := NewBookingService(bookings, customers, producer, "bookings")
	ctx := context.Background()

	first, err := s.CreateBooking(ctx, validInput())
	require.NoError(t, err)
	second, err := s.CreateBooking(ctx, validInput())
	require.NoError(t, err)

	require.Len(t, customers.rows, 1)
	require.Len(t, bookings.rows, 2)
	assert.Equal(t, customers.rows[0].ID, bookings.rows[0].CustomerID)
	assert.Equal(t, customers.rows[0].ID, bookings.rows[1].CustomerID)
	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Equal(t, "ana@example.com", customers.rows[0].Email)
}

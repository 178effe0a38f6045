package api

import (
	"context"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/auth"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/blog"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/booking"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/fleet"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/reviews"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return bookingsArg(args), args.Error(1)
}

func (m *MockBookingUseCase) RecentBookings(ctx context.Context, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return bookingsArg(args), args.Error(1)
}

func (m *MockBookingUseCase) ComputeStats(ctx context.Context) (domain.BookingStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BookingStats), args.Error(1)
}

func (m *MockBookingUseCase) SearchBookings(ctx context.Context, query string, status *domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx, query, status)
	return bookingsArg(args), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	return bookingArg(args), args.Error(1)
}

func (m *MockBookingUseCase) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	return bookingArg(args), args.Error(1)
}

func (m *MockBookingUseCase) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookingUseCase) TrackBooking(ctx context.Context, reference, token string) (*domain.Booking, error) {
	args := m.Called(ctx, reference, token)
	return bookingArg(args), args.Error(1)
}

func bookingsArg(args mock.Arguments) []domain.Booking {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Booking)
}

func bookingArg(args mock.Arguments) *domain.Booking {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Booking)
}

type MockFleetUseCase struct {
	mock.Mock
}

func (m *MockFleetUseCase) List(ctx context.Context) ([]domain.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *MockFleetUseCase) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	return vehicleArg(args), args.Error(1)
}

func (m *MockFleetUseCase) Create(ctx context.Context, input fleet.VehicleInput) (*domain.Vehicle, error) {
	args := m.Called(ctx, input)
	return vehicleArg(args), args.Error(1)
}

func (m *MockFleetUseCase) Update(ctx context.Context, id int64, input fleet.VehicleInput) (*domain.Vehicle, error) {
	args := m.Called(ctx, id, input)
	return vehicleArg(args), args.Error(1)
}

func (m *MockFleetUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFleetUseCase) UploadImages(ctx context.Context, id int64, files []storage.File) (*domain.Vehicle, error) {
	args := m.Called(ctx, id, files)
	return vehicleArg(args), args.Error(1)
}

func (m *MockFleetUseCase) ReorderImages(ctx context.Context, id int64, from, to int) (*domain.Vehicle, error) {
	args := m.Called(ctx, id, from, to)
	return vehicleArg(args), args.Error(1)
}

func (m *MockFleetUseCase) RemoveImage(ctx context.Context, id int64, imageID string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id, imageID)
	return vehicleArg(args), args.Error(1)
}

func vehicleArg(args mock.Arguments) *domain.Vehicle {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Vehicle)
}

type MockReviewUseCase struct {
	mock.Mock
}

func (m *MockReviewUseCase) RecentRanked(ctx context.Context, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *MockReviewUseCase) CreateReview(ctx context.Context, input reviews.CreateReviewInput, photo *storage.File) (*domain.Review, error) {
	args := m.Called(ctx, input, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

type MockBlogUseCase struct {
	mock.Mock
}

func (m *MockBlogUseCase) ListPublished(ctx context.Context) ([]domain.Blog, error) {
	args := m.Called(ctx)
	return blogsArg(args), args.Error(1)
}

func (m *MockBlogUseCase) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blog.Post), args.Error(1)
}

func (m *MockBlogUseCase) List(ctx context.Context) ([]domain.Blog, error) {
	args := m.Called(ctx)
	return blogsArg(args), args.Error(1)
}

func (m *MockBlogUseCase) Create(ctx context.Context, input blog.BlogInput) (*domain.Blog, error) {
	args := m.Called(ctx, input)
	return blogArg(args), args.Error(1)
}

func (m *MockBlogUseCase) Update(ctx context.Context, id int64, input blog.BlogInput) (*domain.Blog, error) {
	args := m.Called(ctx, id, input)
	return blogArg(args), args.Error(1)
}

func (m *MockBlogUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBlogUseCase) UploadCover(ctx context.Context, id int64, file storage.File) (*domain.Blog, error) {
	args := m.Called(ctx, id, file)
	return blogArg(args), args.Error(1)
}

func blogsArg(args mock.Arguments) []domain.Blog {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Blog)
}

func blogArg(args mock.Arguments) *domain.Blog {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Blog)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(email, password string) (auth.Token, error) {
	args := m.Called(email, password)
	return args.Get(0).(auth.Token), args.Error(1)
}

func (m *MockAuthenticator) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

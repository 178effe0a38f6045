package fleet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/validation"
)

type FleetUseCase interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	Create(ctx context.Context, input VehicleInput) (*domain.Vehicle, error)
	Update(ctx context.Context, id int64, input VehicleInput) (*domain.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, id int64, files []storage.File) (*domain.Vehicle, error)
	ReorderImages(ctx context.Context, id int64, from, to int) (*domain.Vehicle, error)
	RemoveImage(ctx context.Context, id int64, imageID string) (*domain.Vehicle, error)
}

type Cache interface {
	GetVehicles(ctx context.Context) ([]domain.Vehicle, error)
	SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error
	InvalidateVehicles(ctx context.Context) error
}

type VehicleInput struct {
	Make           string `json:"make" validate:"required,max=60"`
	Model          string `json:"model" validate:"required,max=60"`
	Year           int    `json:"year" validate:"gte=1980,lte=2100"`
	Category       string `json:"category" validate:"required,oneof=sedan suv van pickup hatchback"`
	Transmission   string `json:"transmission" validate:"required,oneof=automatic manual"`
	Seats          int    `json:"seats" validate:"gte=1,lte=20"`
	DailyRateCents int64  `json:"daily_rate_cents" validate:"gt=0"`
	Available      bool   `json:"available"`
}

type FleetService struct {
	repo      repository.VehicleRepository
	cache     Cache
	uploader  storage.Uploader
	bucket    string
	validator *validation.Validator
	log       *logger.Logger
}

func NewFleetService(repo repository.VehicleRepository, cache Cache, uploader storage.Uploader, bucket string, log *logger.Logger) *FleetService {
	if log == nil {
		log = logger.Nop()
	}
	return &FleetService{
		repo:      repo,
		cache:     cache,
		uploader:  uploader,
		bucket:    bucket,
		validator: validation.New(),
		log:       log,
	}
}

func (s *FleetService) List(ctx context.Context) ([]domain.Vehicle, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetVehicles(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("vehicle cache read failed", "error", err)
		}
	}

	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: List - load vehicles: %v", domain.ErrFetch, err)
	}
	if s.cache != nil {
		if err := s.cache.SetVehicles(ctx, vehicles); err != nil {
			s.log.Warn("vehicle cache write failed", "error", err)
		}
	}
	return vehicles, nil
}

func (s *FleetService) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: GetByID - load vehicle: %v", domain.ErrFetch, err)
	}
	return v, nil
}

func (in *VehicleInput) normalize() {
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Transmission = strings.ToLower(strings.TrimSpace(in.Transmission))
}

func (in VehicleInput) apply(v *domain.Vehicle) {
	v.Make = in.Make
	v.Model = in.Model
	v.Year = in.Year
	v.Category = in.Category
	v.Transmission = in.Transmission
	v.Seats = in.Seats
	v.DailyRateCents = in.DailyRateCents
	v.Available = in.Available
}

func (s *FleetService) Create(ctx context.Context, input VehicleInput) (*domain.Vehicle, error) {
	input.normalize()
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	v := &domain.Vehicle{}
	input.apply(v)
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("%w: Create - insert vehicle: %v", domain.ErrWrite, err)
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *FleetService) Update(ctx context.Context, id int64, input VehicleInput) (*domain.Vehicle, error) {
	input.normalize()
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(v)
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, s.writeErr("Update", id, err)
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *FleetService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeErr("Delete", id, err)
	}
	s.invalidate(ctx)
	return nil
}

// UploadImages appends every file to the vehicle's gallery. A file that
// cannot be uploaded stays in the gallery as degraded-local rather than
// failing the whole batch.
func (s *FleetService) UploadImages(ctx context.Context, id int64, files []storage.File) (*domain.Vehicle, error) {
	if len(files) == 0 {
		return nil, validation.Fail("images", "at least one file is required")
	}
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prefix := "vehicles/" + strconv.FormatInt(id, 10)
	for _, f := range files {
		item := v.Images.Add(f.Name)
		url, err := storage.Put(ctx, s.uploader, s.bucket, prefix, f)
		if err != nil {
			s.log.Warn("vehicle image upload failed", "vehicle_id", id, "file", f.Name, "error", err)
			_ = v.Images.Fail(item.ID)
			continue
		}
		_ = v.Images.Commit(item.ID, url)
	}

	if err := s.saveImages(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *FleetService) ReorderImages(ctx context.Context, id int64, from, to int) (*domain.Vehicle, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Images.Move(from, to); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.saveImages(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *FleetService) RemoveImage(ctx context.Context, id int64, imageID string) (*domain.Vehicle, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := v.Images.RemoveID(imageID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	if err := s.saveImages(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *FleetService) saveImages(ctx context.Context, v *domain.Vehicle) error {
	if err := s.repo.UpdateImages(ctx, v.ID, &v.Images); err != nil {
		return s.writeErr("UpdateImages", v.ID, err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *FleetService) writeErr(op string, id int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: vehicle %d", domain.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s - vehicle %d: %v", domain.ErrWrite, op, id, err)
}

func (s *FleetService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateVehicles(ctx); err != nil {
		s.log.Warn("vehicle cache invalidation failed", "error", err)
	}
}

type Quote struct {
	Days           int   `json:"days"`
	DailyRateCents int64 `json:"daily_rate_cents"`
	TotalCents     int64 `json:"total_cents"`
}

// QuoteRental charges whole days, rounding any partial day up, with a
// minimum of one day.
func QuoteRental(dailyRateCents int64, pickup, ret time.Time) (Quote, error) {
	if !ret.After(pickup) {
		return Quote{}, validation.Fail("ReturnDate", "must be after the pickup date")
	}
	days := int(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return Quote{
		Days:           days,
		DailyRateCents: dailyRateCents,
		TotalCents:     int64(days) * dailyRateCents,
	}, nil
}

var _ FleetUseCase = (*FleetService)(nil)

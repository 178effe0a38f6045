package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/validation"
)

const (
	DefaultLimit = 6
	MaxLimit     = 50
)

type ReviewUseCase interface {
	RecentRanked(ctx context.Context, limit int) ([]domain.Review, error)
	CreateReview(ctx context.Context, input CreateReviewInput, photo *storage.File) (*domain.Review, error)
}

type CreateReviewInput struct {
	CustomerName string `json:"customer_name" validate:"required,max=120"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	Comment      string `json:"comment" validate:"required,max=2000"`
	VehicleID    *int64 `json:"vehicle_id"`
}

type ReviewService struct {
	repo      repository.ReviewRepository
	uploader  storage.Uploader
	bucket    string
	validator *validation.Validator
	log       *logger.Logger
}

func NewReviewService(repo repository.ReviewRepository, uploader storage.Uploader, bucket string, log *logger.Logger) *ReviewService {
	if log == nil {
		log = logger.Nop()
	}
	return &ReviewService{
		repo:      repo,
		uploader:  uploader,
		bucket:    bucket,
		validator: validation.New(),
		log:       log,
	}
}

// RecentRanked loads the latest reviews and puts the ones with a photo first.
// Nothing is cached; every call hits the store.
func (s *ReviewService) RecentRanked(ctx context.Context, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	recent, err := s.repo.ListRecent(ctx, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: RecentRanked - load reviews: %v", domain.ErrFetch, err)
	}
	return Rank(recent), nil
}

// Rank is a stable two-bucket partition: reviews with a photo, then the
// rest, each bucket keeping the input order.
func Rank(reviews []domain.Review) []domain.Review {
	ranked := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.HasPhoto() {
			ranked = append(ranked, r)
		}
	}
	for _, r := range reviews {
		if !r.HasPhoto() {
			ranked = append(ranked, r)
		}
	}
	return ranked
}

func (s *ReviewService) CreateReview(ctx context.Context, input CreateReviewInput, photo *storage.File) (*domain.Review, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Comment = strings.TrimSpace(input.Comment)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	review := &domain.Review{
		CustomerName: input.CustomerName,
		Rating:       input.Rating,
		Comment:      input.Comment,
		VehicleID:    input.VehicleID,
	}
	if photo != nil {
		url, err := storage.Put(ctx, s.uploader, s.bucket, "reviews", *photo)
		if err != nil {
			s.log.Warn("review photo upload failed", "file", photo.Name, "error", err)
			return nil, fmt.Errorf("%w: CreateReview - photo: %v", domain.ErrUpload, err)
		}
		review.PhotoURL = url
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("%w: CreateReview - insert review: %v", domain.ErrWrite, err)
	}
	return review, nil
}

var _ ReviewUseCase = (*ReviewService)(nil)

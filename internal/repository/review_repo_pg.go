package repository

import (
	"context"
	"fmt"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
)

type ReviewRepository interface {
	ListRecent(ctx context.Context, limit uint64) ([]domain.Review, error)
	Create(ctx context.Context, review *domain.Review) error
}

type PGReviewRepository struct {
	db DB
}

func NewReviewRepository(db DB) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func buildRecentReviewsQuery(limit uint64) (string, []any, error) {
	return psql.Select("id", "customer_name", "rating", "comment", "photo_url", "vehicle_id", "created_at").
		From("reviews").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
}

func (r *PGReviewRepository) ListRecent(ctx context.Context, limit uint64) ([]domain.Review, error) {
	query, args, err := buildRecentReviewsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		var comment, photo *string
		if err := rows.Scan(&rv.ID, &rv.CustomerName, &rv.Rating, &comment, &photo, &rv.VehicleID, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if rv.Rating < 1 || rv.Rating > 5 {
			return nil, fmt.Errorf("%w: review %d has rating %d", domain.ErrFetch, rv.ID, rv.Rating)
		}
		rv.Comment = deref(comment)
		rv.PhotoURL = deref(photo)
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query, args, err := psql.Insert("reviews").
		Columns("customer_name", "rating", "comment", "photo_url", "vehicle_id").
		Values(review.CustomerName, review.Rating, review.Comment, review.PhotoURL, review.VehicleID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&review.ID, &review.CreatedAt)
}

var _ ReviewRepository = (*PGReviewRepository)(nil)

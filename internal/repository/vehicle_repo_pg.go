package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/gallery"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type VehicleRepository interface {
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	UpdateImages(ctx context.Context, id int64, images *gallery.Gallery) error
	Delete(ctx context.Context, id int64) error
}

type PGVehicleRepository struct {
	db DB
}

func NewVehicleRepository(db DB) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

var vehicleColumns = []string{
	"id", "make", "model", "year", "category", "transmission", "seats",
	"daily_rate_cents", "available", "images", "created_at", "updated_at",
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	var images []byte
	if err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Category, &v.Transmission, &v.Seats,
		&v.DailyRateCents, &v.Available, &images, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return domain.Vehicle{}, err
	}
	g, err := decodeGallery(images)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle %d images: %v", domain.ErrFetch, v.ID, err)
	}
	v.Images = g
	return v, nil
}

// Only the ordered items are stored. Primary is derived from position.
func encodeGallery(g *gallery.Gallery) ([]byte, error) {
	return json.Marshal(g.Items())
}

func decodeGallery(data []byte) (gallery.Gallery, error) {
	if len(data) == 0 {
		return gallery.Gallery{}, nil
	}
	var items []gallery.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return gallery.Gallery{}, err
	}
	return gallery.FromItems(items), nil
}

func (r *PGVehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	query, args, err := psql.Select(vehicleColumns...).From("vehicles").OrderBy("daily_rate_cents ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query, args, err := psql.Select(vehicleColumns...).From("vehicles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	v, err := scanVehicle(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (r *PGVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	images, err := encodeGallery(&vehicle.Images)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("vehicles").
		Columns("make", "model", "year", "category", "transmission", "seats", "daily_rate_cents", "available", "images").
		Values(vehicle.Make, vehicle.Model, vehicle.Year, vehicle.Category, vehicle.Transmission, vehicle.Seats,
			vehicle.DailyRateCents, vehicle.Available, string(images)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&vehicle.ID, &vehicle.CreatedAt, &vehicle.UpdatedAt)
}

// Update writes the catalog fields. Images are written by UpdateImages only.
func (r *PGVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	query, args, err := psql.Update("vehicles").
		SetMap(map[string]any{
			"make":             vehicle.Make,
			"model":            vehicle.Model,
			"year":             vehicle.Year,
			"category":         vehicle.Category,
			"transmission":     vehicle.Transmission,
			"seats":            vehicle.Seats,
			"daily_rate_cents": vehicle.DailyRateCents,
			"available":        vehicle.Available,
			"updated_at":       sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": vehicle.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&vehicle.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *PGVehicleRepository) UpdateImages(ctx context.Context, id int64, images *gallery.Gallery) error {
	payload, err := encodeGallery(images)
	if err != nil {
		return err
	}
	query, args, err := psql.Update("vehicles").
		Set("images", string(payload)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	return execAffecting(ctx, r.db, query, args...)
}

func (r *PGVehicleRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("vehicles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	return execAffecting(ctx, r.db, query, args...)
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)

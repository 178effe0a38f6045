package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type BookingFilter struct {
	Status            *domain.BookingStatus
	ReferenceContains string
	Limit             uint64
}

type BookingRepository interface {
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Delete(ctx context.Context, id int64) error
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) BookingRepository {
	return &PGBookingRepository{db: db}
}

var bookingColumns = []string{
	"b.id", "b.reference", "b.access_token", "b.customer_id", "b.vehicle_id",
	"b.pickup_date", "b.return_date", "b.pickup_location", "b.return_location",
	"b.status", "b.total_cents", "b.payment_method", "b.payment_proof_url", "b.notes",
	"b.created_at", "b.updated_at",
	"c.id", "c.full_name", "c.email", "c.phone",
	"v.id", "v.make", "v.model", "v.year",
}

func selectBookings() sq.SelectBuilder {
	return psql.Select(bookingColumns...).
		From("bookings b").
		LeftJoin("customers c ON c.id = b.customer_id").
		LeftJoin("vehicles v ON v.id = b.vehicle_id")
}

func buildListBookingsQuery(filter BookingFilter) (string, []any, error) {
	q := selectBookings().OrderBy("b.created_at DESC", "b.id DESC")
	if filter.Status != nil {
		q = q.Where(sq.Eq{"b.status": string(*filter.Status)})
	}
	if term := strings.TrimSpace(filter.ReferenceContains); term != "" {
		q = q.Where(sq.ILike{"b.reference": "%" + escapeLike(term) + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return q.ToSql()
}

// escapeLike neutralises LIKE wildcards typed by the user.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// bookingRow mirrors one joined row. Customer and vehicle columns are
// nullable because of the LEFT JOINs.
type bookingRow struct {
	ID              int64
	Reference       string
	AccessToken     string
	CustomerID      *int64
	VehicleID       *int64
	PickupDate      time.Time
	ReturnDate      time.Time
	PickupLocation  string
	ReturnLocation  *string
	Status          string
	TotalCents      int64
	PaymentMethod   *string
	PaymentProofURL *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	CustID    *int64
	CustName  *string
	CustEmail *string
	CustPhone *string

	VehID    *int64
	VehMake  *string
	VehModel *string
	VehYear  *int
}

func (r *bookingRow) scan(row pgx.Row) error {
	return row.Scan(
		&r.ID, &r.Reference, &r.AccessToken, &r.CustomerID, &r.VehicleID,
		&r.PickupDate, &r.ReturnDate, &r.PickupLocation, &r.ReturnLocation,
		&r.Status, &r.TotalCents, &r.PaymentMethod, &r.PaymentProofURL, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
		&r.CustID, &r.CustName, &r.CustEmail, &r.CustPhone,
		&r.VehID, &r.VehMake, &r.VehModel, &r.VehYear,
	)
}

// toDomain rejects rows the rest of the system cannot represent.
func (r *bookingRow) toDomain() (domain.Booking, error) {
	status, err := domain.ParseBookingStatus(r.Status)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%w: booking %d has status %q", domain.ErrFetch, r.ID, r.Status)
	}

	b := domain.Booking{
		ID:              r.ID,
		Reference:       r.Reference,
		AccessToken:     r.AccessToken,
		CustomerID:      deref(r.CustomerID),
		VehicleID:       deref(r.VehicleID),
		PickupDate:      r.PickupDate,
		ReturnDate:      r.ReturnDate,
		PickupLocation:  r.PickupLocation,
		ReturnLocation:  deref(r.ReturnLocation),
		Status:          status,
		TotalCents:      r.TotalCents,
		PaymentMethod:   deref(r.PaymentMethod),
		PaymentProofURL: deref(r.PaymentProofURL),
		Notes:           deref(r.Notes),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.CustID != nil {
		b.Customer = &domain.CustomerSummary{
			ID:       *r.CustID,
			FullName: deref(r.CustName),
			Email:    deref(r.CustEmail),
			Phone:    deref(r.CustPhone),
		}
	}
	if r.VehID != nil {
		b.Vehicle = &domain.VehicleSummary{
			ID:    *r.VehID,
			Make:  deref(r.VehMake),
			Model: deref(r.VehModel),
			Year:  deref(r.VehYear),
		}
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	query, args, err := buildListBookingsQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var row bookingRow
		if err := row.scan(rows); err != nil {
			return nil, err
		}
		b, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, sq.Eq{"b.id": id})
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return r.getOne(ctx, sq.Eq{"b.reference": reference})
}

func (r *PGBookingRepository) getOne(ctx context.Context, where sq.Eq) (*domain.Booking, error) {
	query, args, err := selectBookings().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var row bookingRow
	if err := row.scan(r.db.QueryRow(ctx, query, args...)); err != nil {
		return nil, notFound(err)
	}
	b, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query, args, err := psql.Insert("bookings").
		Columns(
			"reference", "access_token", "customer_id", "vehicle_id",
			"pickup_date", "return_date", "pickup_location", "return_location",
			"status", "total_cents", "payment_method", "payment_proof_url", "notes",
		).
		Values(
			booking.Reference, booking.AccessToken, booking.CustomerID, booking.VehicleID,
			booking.PickupDate, booking.ReturnDate, booking.PickupLocation, booking.ReturnLocation,
			string(booking.Status), booking.TotalCents, booking.PaymentMethod, booking.PaymentProofURL, booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	return r.db.QueryRow(ctx, query, args...).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// UpdateStatus overwrites the status whatever it was before.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	query, args, err := psql.Update("bookings").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	return execAffecting(ctx, r.db, query, args...)
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("bookings").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	return execAffecting(ctx, r.db, query, args...)
}

var _ BookingRepository = (*PGBookingRepository)(nil)

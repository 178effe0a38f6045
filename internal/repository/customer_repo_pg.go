package repository

import (
	"context"
	"fmt"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	sq "github.com/Masterminds/squirrel"
)

type CustomerRepository interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
}

type PGCustomerRepository struct {
	db DB
}

func NewCustomerRepository(db DB) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

// buildFindCustomerQuery matches on email or phone, preferring the oldest row
// when both identify different customers. Empty identifiers never match.
func buildFindCustomerQuery(email, phone string) (string, []any, error) {
	match := sq.Or{}
	if email != "" {
		match = append(match, sq.Eq{"email": email})
	}
	if phone != "" {
		match = append(match, sq.Eq{"phone": phone})
	}
	if len(match) == 0 {
		return "", nil, fmt.Errorf("%w: email or phone is required", domain.ErrValidation)
	}
	return psql.Select("id", "full_name", "email", "phone", "created_at", "updated_at").
		From("customers").
		Where(match).
		OrderBy("created_at ASC", "id ASC").
		Limit(1).
		ToSql()
}

func (r *PGCustomerRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.Customer, error) {
	query, args, err := buildFindCustomerQuery(email, phone)
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	var phoneCol *string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.FullName, &c.Email, &phoneCol, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	c.Phone = deref(phoneCol)
	return &c, nil
}

func (r *PGCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query, args, err := psql.Insert("customers").
		Columns("full_name", "email", "phone").
		Values(customer.FullName, customer.Email, customer.Phone).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *PGCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query, args, err := psql.Update("customers").
		Set("full_name", customer.FullName).
		Set("email", customer.Email).
		Set("phone", customer.Phone).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": customer.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&customer.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)

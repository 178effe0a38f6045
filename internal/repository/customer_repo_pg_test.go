package repository

import (
	"errors"
	"testing"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFindCustomerQuery(t *testing.T) {
	query, args, err := buildFindCustomerQuery("ana@example.com", "+639171234567")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, full_name, email, phone, created_at, updated_at FROM customers WHERE (email = $1 OR phone = $2) ORDER BY created_at ASC, id ASC LIMIT 1",
		query)
	assert.Equal(t, []any{"ana@example.com", "+639171234567"}, args)
}

func TestBuildFindCustomerQuery_EmptyPhoneNeverMatches(t *testing.T) {
	query, args, err := buildFindCustomerQuery("ana@example.com", "")
	require.NoError(t, err)
	assert.NotContains(t, query, "phone =")
	assert.Equal(t, []any{"ana@example.com"}, args)

	_, _, err = buildFindCustomerQuery("", "")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsUniqueViolation_WithDetail(t *testing.T) {
	err := &pgconn.PgError{
		Code:           "23505",
		TableName:      "customers",
		ConstraintName: "ix_customers_bank_account",
		Detail:         `Key (bank_account)=(12345) already exists.`,
	}

	v, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "customers", v.Table)
	assert.Equal(t, "ix_customers_bank_account", v.Constraint)
	assert.Equal(t, "bank_account", v.Field)
	assert.Equal(t, "12345", v.Value)
}

func TestAsUniqueViolation_Wrapped(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505", TableName: "products", ConstraintName: "ix_products_name"}
	err := fmt.Errorf("db error: %w", inner)

	v, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "products", v.Table)
}

func TestAsUniqueViolation_FieldFromConstraintSuffix(t *testing.T) {
	err := &pgconn.PgError{
		Code:           "23505",
		TableName:      "customers",
		ConstraintName: "ix_customers_bank_account",
	}

	v, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "bank_account", v.Field, "no detail line: fall back to constraint suffix")
}

func TestAsUniqueViolation_UnknownConstraintShapeKeptVerbatim(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", TableName: "customers", ConstraintName: "weird_name"}

	v, ok := AsUniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, "weird_name", v.Field)
}

func TestAsUniqueViolation_OtherErrors(t *testing.T) {
	_, ok := AsUniqueViolation(errors.New("plain"))
	assert.False(t, ok)

	_, ok = AsUniqueViolation(&pgconn.PgError{Code: "55P03"})
	assert.False(t, ok)

	_, ok = AsUniqueViolation(nil)
	assert.False(t, ok)
}

func TestIsLockTimeout(t *testing.T) {
	assert.True(t, IsLockTimeout(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, IsLockTimeout(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "55P03"})))
	assert.False(t, IsLockTimeout(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsLockTimeout(errors.New("plain")))
}

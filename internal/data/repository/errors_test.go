package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"pizzeria-backend/pkg/apperror"
)

func TestUniqueConstraint(t *testing.T) {
	err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	constraint, ok := uniqueConstraint(err)
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", constraint)

	_, ok = uniqueConstraint(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = uniqueConstraint(errors.New("plain"))
	assert.False(t, ok)
}

func TestUserConflictNamesField(t *testing.T) {
	err := userConflict("users_username_key")
	appErr, ok := apperror.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.AlreadyExists, appErr.Kind)
	assert.Equal(t, "username", appErr.Field)
	assert.Equal(t, "username already taken", appErr.Message)

	appErr, _ = apperror.As(userConflict("users_email_key"))
	assert.Equal(t, "email", appErr.Field)
	assert.Equal(t, "email already registered", appErr.Message)
}

func TestForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}

func TestSearchClause(t *testing.T) {
	where, args := searchClause(nil, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)

	term := " diav "
	where, args = searchClause(&term, 1)
	assert.Equal(t, " WHERE name ILIKE $1", where)
	assert.Equal(t, []any{"%diav%"}, args)
}

package repository

import (
	"errors"

	"pizzeria-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// uniqueConstraint returns the violated constraint name when err is a
// unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

var (
	ErrUsernameTaken   = apperror.FieldError(apperror.AlreadyExists, "username", "username already taken")
	ErrEmailRegistered = apperror.FieldError(apperror.AlreadyExists, "email", "email already registered")
	ErrAlreadyReviewed = apperror.New(apperror.AlreadyExists, "pizza already reviewed by this user")
	ErrUserNotFound    = apperror.New(apperror.NotFound, "user not found")
)

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// userConflict maps a users unique index to the error naming the field.
func userConflict(constraint string) error {
	switch constraint {
	case "users_username_key":
		return ErrUsernameTaken
	case "users_email_key":
		return ErrEmailRegistered
	default:
		return apperror.New(apperror.AlreadyExists, "account already exists")
	}
}

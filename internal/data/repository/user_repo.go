package repository

import (
	"context"
	"errors"
	"fmt"

	"pizzeria-backend/internal/data/entity"
	"pizzeria-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Credential and token state
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error
	ConsumeVerificationToken(ctx context.Context, email, token string) (bool, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string) error
	ConsumeResetToken(ctx context.Context, email, token, passwordHash string) (bool, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, username, email, password, first_name, last_name, address, role,
		       is_locked, is_enabled, provider, verification_token, reset_password_token,
		       created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Address,
		&user.Role,
		&user.IsLocked,
		&user.IsEnabled,
		&user.Provider,
		&user.VerificationToken,
		&user.ResetPasswordToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. A duplicate username or email surfaces as an
// AlreadyExists error naming the field.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password, first_name, last_name, address, role,
		                   is_locked, is_enabled, provider, verification_token, reset_password_token,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := database.Conn(ctx, ur.db).Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Address,
		user.Role,
		user.IsLocked,
		user.IsEnabled,
		user.Provider,
		user.VerificationToken,
		user.ResetPasswordToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			ur.log.Warn("Duplicate user rejected",
				zap.String("constraint", constraint),
				zap.String("username", user.Username))
			return userConflict(constraint)
		}
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}

	return nil
}

func (ur *userRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user, err := scanUser(database.Conn(ctx, ur.db).QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := ur.findOne(ctx, "id = $1", id)
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}
	return user, nil
}

// FindByEmail matches case-insensitively.
func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := ur.findOne(ctx, "lower(email) = lower($1)", email)
	if err != nil {
		ur.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}
	return user, nil
}

// FindByUsername matches case-insensitively.
func (ur *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := ur.findOne(ctx, "lower(username) = lower($1)", username)
	if err != nil {
		ur.log.Error("Failed to find user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("find user by username %s: %w", username, err)
	}
	return user, nil
}

// FindAll retrieves paginated list of users
func (ur *userRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := database.Conn(ctx, ur.db).Query(ctx, query, limit, offset)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, ur.db).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update saves profile, role and status fields. Credentials and tokens have
// their own methods.
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5, address = $6,
		    role = $7, is_locked = $8, is_enabled = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := database.Conn(ctx, ur.db).Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Address,
		user.Role,
		user.IsLocked,
		user.IsEnabled,
	)

	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return userConflict(constraint)
		}
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", user.ID.String())
	}

	return nil
}

// Delete removes the user; basket, orders and reviews cascade.
func (ur *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := database.Conn(ctx, ur.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}

func (ur *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password = $2, updated_at = NOW() WHERE id = $1`

	result, err := database.Conn(ctx, ur.db).Exec(ctx, query, id, passwordHash)
	if err != nil {
		ur.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("update password for user %s: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", id.String())
	}
	return nil
}

func (ur *userRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET verification_token = $2, updated_at = NOW() WHERE id = $1`

	if _, err := database.Conn(ctx, ur.db).Exec(ctx, query, id, token); err != nil {
		ur.log.Error("Failed to store verification token", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("set verification token for user %s: %w", id.String(), err)
	}
	return nil
}

// ConsumeVerificationToken enables the account and clears the token in one
// statement. It reports false when the token does not match.
func (ur *userRepository) ConsumeVerificationToken(ctx context.Context, email, token string) (bool, error) {
	query := `
		UPDATE users
		SET is_enabled = TRUE, verification_token = NULL, updated_at = NOW()
		WHERE lower(email) = lower($1) AND verification_token = $2 AND is_enabled = FALSE
	`

	result, err := database.Conn(ctx, ur.db).Exec(ctx, query, email, token)
	if err != nil {
		ur.log.Error("Failed to consume verification token", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("consume verification token for %s: %w", email, err)
	}
	return result.RowsAffected() == 1, nil
}

func (ur *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET reset_password_token = $2, updated_at = NOW() WHERE id = $1`

	if _, err := database.Conn(ctx, ur.db).Exec(ctx, query, id, token); err != nil {
		ur.log.Error("Failed to store reset token", zap.Error(err), zap.String("user_id", id.String()))
		return fmt.Errorf("set reset token for user %s: %w", id.String(), err)
	}
	return nil
}

// ConsumeResetToken sets the new password hash and clears the token in one
// statement. It reports false when the token does not match.
func (ur *userRepository) ConsumeResetToken(ctx context.Context, email, token, passwordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password = $3, reset_password_token = NULL, updated_at = NOW()
		WHERE lower(email) = lower($1) AND reset_password_token = $2
	`

	result, err := database.Conn(ctx, ur.db).Exec(ctx, query, email, token, passwordHash)
	if err != nil {
		ur.log.Error("Failed to consume reset token", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("consume reset token for %s: %w", email, err)
	}
	return result.RowsAffected() == 1, nil
}

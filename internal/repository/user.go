package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wordnest/wordnest/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// CreateUser inserts a new user and fills in the generated ID and
// creation timestamp.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if uniqueViolation(err, "username") {
			return ErrUsernameExists
		}
		if uniqueViolation(err, "email") {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, profile_picture_url, bio, created_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, username, email, password_hash, profile_picture_url, bio, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UsernameTaken reports whether a different user already holds the
// username. Pass excludeID = 0 to check against all users.
func (r *Repository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id != $2)`

	var taken bool
	if err := r.pool.QueryRow(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return taken, nil
}

// EmailTaken reports whether a different user already holds the email.
// Pass excludeID = 0 to check against all users.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id != $2)`

	var taken bool
	if err := r.pool.QueryRow(ctx, query, email, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}

// UpdateUserFields applies a partial profile mutation as a single
// UPDATE. Only the non-nil fields of update are written.
func (r *Repository) UpdateUserFields(ctx context.Context, id int64, update model.UserUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var sets []string
	args := []any{id}
	argIndex := 2

	addSet := func(column string, value any) {
		sets = append(sets, column+" = $"+strconv.Itoa(argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Username != nil {
		addSet("username", *update.Username)
	}
	if update.Email != nil {
		addSet("email", *update.Email)
	}
	if update.Bio != nil {
		addSet("bio", *update.Bio)
	}
	if update.PasswordHash != nil {
		addSet("password_hash", *update.PasswordHash)
	}

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $1"

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if uniqueViolation(err, "username") {
			return ErrUsernameExists
		}
		if uniqueViolation(err, "email") {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetProfilePicture records the asset reference on the user row.
// A nil url clears the reference.
func (r *Repository) SetProfilePicture(ctx context.Context, id int64, url *string) error {
	query := `UPDATE users SET profile_picture_url = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return fmt.Errorf("failed to set profile picture: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ProfilePictureURL,
		&user.Bio,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

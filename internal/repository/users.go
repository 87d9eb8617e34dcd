package repository

import (
	"context"

	"github.com/inferno/inferno-bank/internal/apperrors"
	"github.com/inferno/inferno-bank/internal/models"
)

const userColumns = `uuid, name, last_name, email, password_hash, document_number, COALESCE(image_url, ''), created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.UUID, &user.Name, &user.LastName, &user.Email,
		&user.PasswordHash, &user.DocumentNumber, &user.ImageURL,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user record
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO bank.users (uuid, name, last_name, email, password_hash, document_number, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		user.UUID, user.Name, user.LastName, user.Email,
		user.PasswordHash, user.DocumentNumber, user.ImageURL,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, "failed to create user", err)
	}
	return nil
}

// FindUserByUUID retrieves a user by identifier
func (r *Repository) FindUserByUUID(ctx context.Context, uuid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM bank.users WHERE uuid = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, uuid))
	if isNoRows(err) {
		return nil, apperrors.New(apperrors.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to find user", err)
	}
	return user, nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM bank.users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if isNoRows(err) {
		return nil, apperrors.New(apperrors.NotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to find user", err)
	}
	return user, nil
}

// EmailExists reports whether a user with the given email is registered
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bank.users WHERE email = $1)`
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, apperrors.Wrap(apperrors.Dependency, "failed to check email", err)
	}
	return exists, nil
}

// DocumentNumberExists reports whether a user with the given document number is registered
func (r *Repository) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bank.users WHERE document_number = $1)`
	if err := r.db.QueryRowContext(ctx, query, documentNumber).Scan(&exists); err != nil {
		return false, apperrors.Wrap(apperrors.Dependency, "failed to check document number", err)
	}
	return exists, nil
}

// UpdateUser persists the mutable profile fields of an existing user
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE bank.users
		SET name = $2, last_name = $3, image_url = $4, updated_at = $5
		WHERE uuid = $1`
	_, err := r.db.ExecContext(ctx, query,
		user.UUID, user.Name, user.LastName, user.ImageURL, user.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.Dependency, "failed to update user", err)
	}
	return nil
}

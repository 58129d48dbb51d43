package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Repository handles user persistence for the auth flow.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role, user_type, status, created_at, updated_at`

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.Role, &u.UserType, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.Role, &u.UserType, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user and returns it.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, userType models.UserType) (*models.User, error) {
	const q = `INSERT INTO users (id, email, password_hash, full_name, role, user_type, status)
		VALUES (gen_random_uuid(), $1, $2, $3, 'user', $4, 'active')
		RETURNING ` + userColumns
	var u models.User
	err := r.pool.QueryRow(ctx, q, email, passwordHash, fullName, userType).
		Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role, &u.UserType, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

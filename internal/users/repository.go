package users

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Repository handles admin-side user management.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const publicColumns = `id, email, full_name, role, user_type, status, created_at`

// List returns users, optionally filtered by status and a search term over
// email and full name.
func (r *Repository) List(ctx context.Context, status, search string, limit, offset int) ([]models.UserPublic, error) {
	q := `SELECT ` + publicColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		q += ` AND status = $1`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		q += ` AND (email ILIKE $` + strconv.Itoa(len(args)) + ` OR full_name ILIKE $` + strconv.Itoa(len(args)) + `)`
	}
	args = append(args, limit, offset)
	q += ` ORDER BY full_name, email LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.UserType, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Get returns one user's public view.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.UserPublic, error) {
	const q = `SELECT ` + publicColumns + ` FROM users WHERE id = $1`
	var u models.UserPublic
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.UserType, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update changes role, user type and/or status.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, role, userType, status *string) error {
	const q = `UPDATE users SET
		role = COALESCE($1, role),
		user_type = COALESCE($2, user_type),
		status = COALESCE($3, status),
		updated_at = NOW()
		WHERE id = $4`
	_, err := r.pool.Exec(ctx, q, role, userType, status, id)
	return err
}

// Delete hard-deletes a user. Destructive; normal flow deactivates instead.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}


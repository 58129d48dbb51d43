package care

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const taskColumns = `id, organization_id, horse_id, task_type, due_date, completed_at, notes, created_at, updated_at`

// Repository persists care tasks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a care task repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTask(row interface{ Scan(...any) error }) (*models.CareTask, error) {
	var t models.CareTask
	err := row.Scan(&t.ID, &t.OrganizationID, &t.HorseID, &t.TaskType, &t.DueDate,
		&t.CompletedAt, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a care task.
func (r *Repository) Create(ctx context.Context, t *models.CareTask) error {
	const q = `INSERT INTO care_tasks (organization_id, horse_id, task_type, due_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.OrganizationID, t.HorseID, t.TaskType, t.DueDate, t.Notes).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns one care task.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CareTask, error) {
	return scanTask(r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM care_tasks WHERE id = $1`, id))
}

// ListFilter narrows care task listings.
type ListFilter struct {
	OrgIDs     []uuid.UUID // nil = no filter (admin); empty = no accessible orgs
	HorseID    *uuid.UUID
	OpenOnly   bool       // exclude completed tasks
	DueBefore  *time.Time // upcoming window cutoff
	Limit      int
	Offset     int
}

// List returns care tasks matching the filter, soonest due first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.CareTask, error) {
	if f.OrgIDs != nil && len(f.OrgIDs) == 0 {
		return []models.CareTask{}, nil
	}
	q := `SELECT ` + taskColumns + ` FROM care_tasks WHERE 1=1`
	args := []any{}
	if f.OrgIDs != nil {
		args = append(args, f.OrgIDs)
		q += ` AND organization_id = ANY($` + strconv.Itoa(len(args)) + `)`
	}
	if f.HorseID != nil {
		args = append(args, *f.HorseID)
		q += ` AND horse_id = $` + strconv.Itoa(len(args))
	}
	if f.OpenOnly {
		q += ` AND completed_at IS NULL`
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		q += ` AND due_date <= $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY due_date ASC`
	args = append(args, f.Limit)
	q += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	q += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.CareTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Complete marks a task done at the given time.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE care_tasks SET completed_at = $1, updated_at = NOW() WHERE id = $2`, at, id)
	return err
}

// Delete removes a care task.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM care_tasks WHERE id = $1`, id)
	return err
}

// CountDue returns the number of open tasks due on or before the cutoff
// for an organization.
func (r *Repository) CountDue(ctx context.Context, orgID uuid.UUID, cutoff time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM care_tasks WHERE organization_id = $1 AND completed_at IS NULL AND due_date <= $2`,
		orgID, cutoff).Scan(&n)
	return n, err
}

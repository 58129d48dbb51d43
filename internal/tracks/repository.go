package tracks

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const trackColumns = `id, scope, organization_id, name, surface, length_meters, location, created_at, updated_at`

// Repository persists tracks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a track repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTrack(row interface{ Scan(...any) error }) (*models.Track, error) {
	var t models.Track
	err := row.Scan(&t.ID, &t.Scope, &t.OrganizationID, &t.Name, &t.Surface,
		&t.LengthMeters, &t.Location, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a track. Scope and organization are fixed at creation.
func (r *Repository) Create(ctx context.Context, t *models.Track) error {
	const q = `INSERT INTO tracks (scope, organization_id, name, surface, length_meters, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Scope, t.OrganizationID, t.Name, t.Surface,
		t.LengthMeters, t.Location).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns one track.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Track, error) {
	return scanTrack(r.pool.QueryRow(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE id = $1`, id))
}

// List returns all global tracks plus the local tracks of the given
// organizations. OrgIDs follows the list convention: nil means every
// organization (admin), empty means globals only.
func (r *Repository) List(ctx context.Context, orgIDs []uuid.UUID) ([]models.Track, error) {
	var q string
	var args []any
	if orgIDs == nil {
		q = `SELECT ` + trackColumns + ` FROM tracks ORDER BY scope, name`
	} else {
		q = `SELECT ` + trackColumns + ` FROM tracks
			WHERE scope = 'global' OR organization_id = ANY($1)
			ORDER BY scope, name`
		args = append(args, orgIDs)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// UpdateParams are the mutable track fields.
type UpdateParams struct {
	Name         *string
	Surface      *string
	LengthMeters *float64
	Location     *string
}

// Update applies a partial update. Scope and owning organization never change.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	const q = `UPDATE tracks SET
		name = COALESCE($1, name),
		surface = COALESCE($2, surface),
		length_meters = COALESCE($3, length_meters),
		location = COALESCE($4, location),
		updated_at = NOW()
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, p.Name, p.Surface, p.LengthMeters, p.Location, id)
	return err
}

// Delete removes a track. Sessions referencing it keep existing with a
// null track.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tracks WHERE id = $1`, id)
	return err
}

package horses

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Repository handles horse and horse-favorite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a horses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const horseColumns = `id, organization_id, name, breed, gender, date_of_birth, status, device_id, health_records, photo_url, photo_key, created_at, updated_at`

func scanHorse(row pgx.Row) (*models.Horse, error) {
	var h models.Horse
	err := row.Scan(&h.ID, &h.OrganizationID, &h.Name, &h.Breed, &h.Gender, &h.DateOfBirth,
		&h.Status, &h.DeviceID, &h.HealthRecords, &h.PhotoURL, &h.PhotoKey, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts a new horse. The organization is fixed here for good:
// Update never touches organization_id. Horses start unpaired; device_id
// is written only by the devices repository's link/unlink transactions.
func (r *Repository) Create(ctx context.Context, h *models.Horse) error {
	const q = `INSERT INTO horses (id, organization_id, name, breed, gender, date_of_birth, status, health_records)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, h.OrganizationID, h.Name, h.Breed, h.Gender, h.DateOfBirth,
		h.Status, h.HealthRecords).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

// GetByID returns a horse by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	return scanHorse(r.pool.QueryRow(ctx, `SELECT `+horseColumns+` FROM horses WHERE id = $1`, id))
}

// ListFilter narrows List results.
type ListFilter struct {
	OrgIDs  []uuid.UUID // nil = no filter (admin); empty = no accessible orgs
	Status  string
	Search  string // matched against name and breed
	Limit   int
	Offset  int
	OrderBy string // whitelisted "column direction", e.g. "name ASC"
}

// List returns horses matching the filter.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Horse, error) {
	if f.OrgIDs != nil && len(f.OrgIDs) == 0 {
		return []models.Horse{}, nil
	}
	q := `SELECT ` + horseColumns + ` FROM horses WHERE 1=1`
	args := []interface{}{}
	if f.OrgIDs != nil {
		args = append(args, f.OrgIDs)
		q += ` AND organization_id = ANY($1)`
	}
	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status = $` + itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		q += ` AND (name ILIKE $` + itoa(len(args)) + ` OR breed ILIKE $` + itoa(len(args)) + `)`
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "name ASC"
	}
	args = append(args, f.Limit, f.Offset)
	q += ` ORDER BY ` + orderBy + ` LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Horse
	for rows.Next() {
		h, err := scanHorse(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *h)
	}
	return list, rows.Err()
}

// UpdateParams are the mutable horse fields. organization_id and device_id
// are absent on purpose: the organization is immutable and device pairing
// belongs to the devices repository.
type UpdateParams struct {
	Name          *string
	Breed         *string
	Gender        *string
	DateOfBirth   *string
	Status        *string
	HealthRecords []byte // replaces the document wholesale when non-nil
}

// Update applies a partial update.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	const q = `UPDATE horses SET
		name = COALESCE($1, name),
		breed = COALESCE($2, breed),
		gender = COALESCE($3, gender),
		date_of_birth = COALESCE($4::date, date_of_birth),
		status = COALESCE($5, status),
		health_records = COALESCE($6::json, health_records),
		updated_at = NOW()
		WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, p.Name, p.Breed, p.Gender, p.DateOfBirth, p.Status,
		p.HealthRecords, id)
	return err
}

// SetPhoto records the uploaded photo's URL and storage key.
func (r *Repository) SetPhoto(ctx context.Context, id uuid.UUID, url, key string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE horses SET photo_url = $1, photo_key = $2, updated_at = NOW() WHERE id = $3`, url, key, id)
	return err
}

// Delete removes a horse. Sessions keep their rows with horse_id nulled.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM horses WHERE id = $1`, id)
	return err
}

// AddFavorite marks a horse as a favorite of the user. Adding twice is a
// no-op (ON CONFLICT DO NOTHING), never a duplicate.
func (r *Repository) AddFavorite(ctx context.Context, userID, horseID uuid.UUID) error {
	const q = `INSERT INTO horse_favorites (user_id, horse_id) VALUES ($1, $2)
		ON CONFLICT (user_id, horse_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, userID, horseID)
	return err
}

// RemoveFavorite removes a favorite.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, horseID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM horse_favorites WHERE user_id = $1 AND horse_id = $2`, userID, horseID)
	return err
}

// ListFavorites returns the user's favorite horses, most recently added first.
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Horse, error) {
	const q = `SELECT h.id, h.organization_id, h.name, h.breed, h.gender, h.date_of_birth,
		h.status, h.device_id, h.health_records, h.photo_url, h.photo_key, h.created_at, h.updated_at
		FROM horses h
		INNER JOIN horse_favorites f ON f.horse_id = h.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Horse
	for rows.Next() {
		h, err := scanHorse(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *h)
	}
	return list, rows.Err()
}

func itoa(n int) string { return strconv.Itoa(n) }

package apisettings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const keyColumns = `id, organization_id, name, key_hash, key_prefix, created_by, last_used_at, revoked_at, created_at`

// Repository persists API keys.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an API key repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanKey(row interface{ Scan(...any) error }) (*models.APIKey, error) {
	var k models.APIKey
	err := row.Scan(&k.ID, &k.OrganizationID, &k.Name, &k.KeyHash, &k.KeyPrefix,
		&k.CreatedBy, &k.LastUsedAt, &k.RevokedAt, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Create inserts an API key record.
func (r *Repository) Create(ctx context.Context, k *models.APIKey) error {
	const q = `INSERT INTO api_keys (organization_id, name, key_hash, key_prefix, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, k.OrganizationID, k.Name, k.KeyHash, k.KeyPrefix, k.CreatedBy).
		Scan(&k.ID, &k.CreatedAt)
}

// GetByID returns one key record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	return scanKey(r.pool.QueryRow(ctx,
		`SELECT `+keyColumns+` FROM api_keys WHERE id = $1`, id))
}

// GetByHash looks a key up by its stored hash. Ingest authentication path.
func (r *Repository) GetByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	return scanKey(r.pool.QueryRow(ctx,
		`SELECT `+keyColumns+` FROM api_keys WHERE key_hash = $1`, hash))
}

// ListByOrg returns all keys of an organization, newest first, revoked
// included.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.APIKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+keyColumns+` FROM api_keys WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []models.APIKey{}
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *k)
	}
	return keys, rows.Err()
}

// Revoke marks a key revoked. Revocation is permanent.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`, at, id)
	return err
}

// TouchLastUsed records a successful ingest authentication.
func (r *Repository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}

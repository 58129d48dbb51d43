package injuries

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const injuryColumns = `id, session_id, organization_id, horse_id, status, risk_level,
	notes, medical_diagnosis, diagnosed_by, diagnosed_at, created_at, updated_at`

// Repository persists injury records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an injury record repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInjury(row interface{ Scan(...any) error }) (*models.InjuryRecord, error) {
	var rec models.InjuryRecord
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.OrganizationID, &rec.HorseID,
		&rec.Status, &rec.RiskLevel, &rec.Notes, &rec.MedicalDiagnosis,
		&rec.DiagnosedBy, &rec.DiagnosedAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts an injury record. The worker and the manual flagging
// endpoint both go through here.
func (r *Repository) Create(ctx context.Context, rec *models.InjuryRecord) error {
	const q = `INSERT INTO injury_records (session_id, organization_id, horse_id, status, risk_level, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, rec.SessionID, rec.OrganizationID, rec.HorseID,
		rec.Status, rec.RiskLevel, rec.Notes).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// GetByID returns one injury record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.InjuryRecord, error) {
	return scanInjury(r.pool.QueryRow(ctx,
		`SELECT `+injuryColumns+` FROM injury_records WHERE id = $1`, id))
}

// ListFilter narrows injury record listings.
type ListFilter struct {
	OrgIDs  []uuid.UUID // nil = no filter (admin); empty = no accessible orgs
	HorseID *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

// List returns injury records matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.InjuryRecord, error) {
	if f.OrgIDs != nil && len(f.OrgIDs) == 0 {
		return []models.InjuryRecord{}, nil
	}
	q := `SELECT ` + injuryColumns + ` FROM injury_records WHERE 1=1`
	args := []any{}
	if f.OrgIDs != nil {
		args = append(args, f.OrgIDs)
		q += ` AND organization_id = ANY($` + itoa(len(args)) + `)`
	}
	if f.HorseID != nil {
		args = append(args, *f.HorseID)
		q += ` AND horse_id = $` + itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status = $` + itoa(len(args))
	}
	q += ` ORDER BY created_at DESC`
	args = append(args, f.Limit)
	q += ` LIMIT $` + itoa(len(args))
	args = append(args, f.Offset)
	q += ` OFFSET $` + itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.InjuryRecord{}
	for rows.Next() {
		rec, err := scanInjury(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UpdateNotes sets the free-text notes on a record.
func (r *Repository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE injury_records SET notes = $1, updated_at = NOW() WHERE id = $2`, notes, id)
	return err
}

// SetStatus records a status transition. Diagnosis fields are written only
// when moving to diagnosed and cleared when moving away from it.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.InjuryStatus, diagnosis string, diagnosedBy *uuid.UUID) error {
	if status == models.InjuryDiagnosed {
		now := time.Now().UTC()
		_, err := r.pool.Exec(ctx, `UPDATE injury_records SET
			status = $1, medical_diagnosis = $2, diagnosed_by = $3, diagnosed_at = $4, updated_at = NOW()
			WHERE id = $5`, status, diagnosis, diagnosedBy, now, id)
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE injury_records SET
		status = $1, medical_diagnosis = '', diagnosed_by = NULL, diagnosed_at = NULL, updated_at = NOW()
		WHERE id = $2`, status, id)
	return err
}

// Delete removes an injury record.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM injury_records WHERE id = $1`, id)
	return err
}

// CountOpen returns the number of non-dismissed records for an organization.
func (r *Repository) CountOpen(ctx context.Context, orgID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM injury_records WHERE organization_id = $1 AND status != 'dismissed'`,
		orgID).Scan(&n)
	return n, err
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

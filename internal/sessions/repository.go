package sessions

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Repository handles training session and session comment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a sessions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `id, organization_id, horse_id, track_id, device_serial, started_at, duration_seconds, distance_meters, performance_data, injury_risk, created_at, updated_at`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.OrganizationID, &s.HorseID, &s.TrackID, &s.DeviceSerial,
		&s.StartedAt, &s.DurationSeconds, &s.DistanceMeters, &s.PerformanceData,
		&s.InjuryRisk, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new session.
func (r *Repository) Create(ctx context.Context, s *models.Session) error {
	const q = `INSERT INTO sessions (id, organization_id, horse_id, track_id, device_serial, started_at, duration_seconds, distance_meters, performance_data, injury_risk)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	risk := s.InjuryRisk
	if risk == "" {
		risk = models.RiskLow
	}
	return r.pool.QueryRow(ctx, q, s.OrganizationID, s.HorseID, s.TrackID, s.DeviceSerial,
		s.StartedAt, s.DurationSeconds, s.DistanceMeters, s.PerformanceData, risk).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a session by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
}

// ListFilter narrows List results.
type ListFilter struct {
	OrgIDs  []uuid.UUID // nil = no filter (admin); empty = no accessible orgs
	HorseID *uuid.UUID
	TrackID *uuid.UUID
	Risk    string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
	OrderBy string // whitelisted "column direction"
}

// List returns sessions matching the filter, most recent first by default.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Session, error) {
	if f.OrgIDs != nil && len(f.OrgIDs) == 0 {
		return []models.Session{}, nil
	}
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	args := []interface{}{}
	if f.OrgIDs != nil {
		args = append(args, f.OrgIDs)
		q += ` AND organization_id = ANY($1)`
	}
	if f.HorseID != nil {
		args = append(args, *f.HorseID)
		q += ` AND horse_id = $` + strconv.Itoa(len(args))
	}
	if f.TrackID != nil {
		args = append(args, *f.TrackID)
		q += ` AND track_id = $` + strconv.Itoa(len(args))
	}
	if f.Risk != "" {
		args = append(args, f.Risk)
		q += ` AND injury_risk = $` + strconv.Itoa(len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		q += ` AND started_at >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		q += ` AND started_at < $` + strconv.Itoa(len(args))
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "started_at DESC"
	}
	args = append(args, f.Limit, f.Offset)
	q += ` ORDER BY ` + orderBy + ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

// UpdateParams are the mutable session fields.
type UpdateParams struct {
	HorseID    *uuid.UUID
	ClearHorse bool
	TrackID    *uuid.UUID
	ClearTrack bool
	StartedAt  *time.Time
}

// Update applies a partial update. Risk and performance data are owned by
// the ingestion/analysis path, not this method.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	const q = `UPDATE sessions SET
		horse_id = CASE WHEN $1 THEN NULL ELSE COALESCE($2, horse_id) END,
		track_id = CASE WHEN $3 THEN NULL ELSE COALESCE($4, track_id) END,
		started_at = COALESCE($5, started_at),
		updated_at = NOW()
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, q, p.ClearHorse, p.HorseID, p.ClearTrack, p.TrackID, p.StartedAt, id)
	return err
}

// UpdateInjuryRisk sets the analyzed risk label (worker path).
func (r *Repository) UpdateInjuryRisk(ctx context.Context, id uuid.UUID, risk models.InjuryRisk) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET injury_risk = $1, updated_at = NOW() WHERE id = $2`, risk, id)
	return err
}

// Delete removes a session. Injury records on it cascade-delete.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// AssignTarget is what a batch assignment sets on each session.
type AssignTarget struct {
	TrackID *uuid.UUID
	HorseID *uuid.UUID
}

// BatchAssign assigns a track and/or horse to each session in one
// transaction, with a savepoint per item: one item's failure rolls back
// only that item, and the batch reports per-item outcomes.
//
// Sessions outside orgID never match the UPDATE, so a caller cannot move
// another organization's sessions by guessing IDs.
func (r *Repository) BatchAssign(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID, target AssignTarget) ([]ItemResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	results := RunBatch(ctx, ids, func(ctx context.Context, id uuid.UUID) error {
		inner, err := tx.Begin(ctx)
		if err != nil {
			return err
		}
		const q = `UPDATE sessions SET
			track_id = COALESCE($1, track_id),
			horse_id = COALESCE($2, horse_id),
			updated_at = NOW()
			WHERE id = $3 AND organization_id = $4`
		tag, err := inner.Exec(ctx, q, target.TrackID, target.HorseID, id, orgID)
		if err != nil {
			_ = inner.Rollback(ctx)
			return err
		}
		if tag.RowsAffected() == 0 {
			_ = inner.Rollback(ctx)
			return pgx.ErrNoRows
		}
		return inner.Commit(ctx)
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateComment inserts a comment on a session.
func (r *Repository) CreateComment(ctx context.Context, cm *models.SessionComment) error {
	const q = `INSERT INTO session_comments (id, session_id, user_id, body)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, cm.SessionID, cm.UserID, cm.Body).Scan(&cm.ID, &cm.CreatedAt)
}

// GetComment returns a comment by ID.
func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*models.SessionComment, error) {
	const q = `SELECT id, session_id, user_id, body, created_at FROM session_comments WHERE id = $1`
	var cm models.SessionComment
	err := r.pool.QueryRow(ctx, q, id).Scan(&cm.ID, &cm.SessionID, &cm.UserID, &cm.Body, &cm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// ListComments returns a session's comments, oldest first.
func (r *Repository) ListComments(ctx context.Context, sessionID uuid.UUID) ([]models.SessionComment, error) {
	const q = `SELECT id, session_id, user_id, body, created_at
		FROM session_comments WHERE session_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.SessionComment
	for rows.Next() {
		var cm models.SessionComment
		if err := rows.Scan(&cm.ID, &cm.SessionID, &cm.UserID, &cm.Body, &cm.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, cm)
	}
	return list, rows.Err()
}

// DeleteComment removes a comment.
func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_comments WHERE id = $1`, id)
	return err
}

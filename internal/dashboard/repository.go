package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Summary is the organization dashboard payload.
type Summary struct {
	OrganizationID    uuid.UUID        `json:"organization_id"`
	HorsesByStatus    map[string]int   `json:"horses_by_status"`
	TotalHorses       int              `json:"total_horses"`
	SessionsLast30d   int              `json:"sessions_last_30d"`
	HighRiskLast30d   int              `json:"high_risk_last_30d"`
	OpenInjuries      int              `json:"open_injuries"`
	CareTasksDue      int              `json:"care_tasks_due"`
	ActiveDevices     int              `json:"active_devices"`
	RecentSessions    []models.Session `json:"recent_sessions"`
}

// Repository computes dashboard aggregates directly against the pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a dashboard repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Summarize computes the dashboard for one organization as of now.
func (r *Repository) Summarize(ctx context.Context, orgID uuid.UUID, now time.Time) (*Summary, error) {
	s := &Summary{
		OrganizationID: orgID,
		HorsesByStatus: map[string]int{},
		RecentSessions: []models.Session{},
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM horses WHERE organization_id = $1 GROUP BY status`, orgID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		s.HorsesByStatus[status] = n
		s.TotalHorses += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	since := now.Add(-30 * 24 * time.Hour)
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE injury_risk IN ('high', 'critical'))
		 FROM sessions WHERE organization_id = $1 AND started_at >= $2`,
		orgID, since).Scan(&s.SessionsLast30d, &s.HighRiskLast30d)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM injury_records WHERE organization_id = $1 AND status != 'dismissed'`,
		orgID).Scan(&s.OpenInjuries)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(14 * 24 * time.Hour)
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM care_tasks
		 WHERE organization_id = $1 AND completed_at IS NULL AND due_date <= $2`,
		orgID, cutoff).Scan(&s.CareTasksDue)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM devices WHERE organization_id = $1 AND status = 'active'`,
		orgID).Scan(&s.ActiveDevices)
	if err != nil {
		return nil, err
	}

	srows, err := r.pool.Query(ctx,
		`SELECT id, organization_id, horse_id, track_id, device_serial, started_at,
		        duration_seconds, distance_meters, performance_data, injury_risk, created_at, updated_at
		 FROM sessions WHERE organization_id = $1 ORDER BY started_at DESC LIMIT 5`, orgID)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var sess models.Session
		err := srows.Scan(&sess.ID, &sess.OrganizationID, &sess.HorseID, &sess.TrackID,
			&sess.DeviceSerial, &sess.StartedAt, &sess.DurationSeconds, &sess.DistanceMeters,
			&sess.PerformanceData, &sess.InjuryRisk, &sess.CreatedAt, &sess.UpdatedAt)
		if err != nil {
			return nil, err
		}
		s.RecentSessions = append(s.RecentSessions, sess)
	}
	return s, srows.Err()
}

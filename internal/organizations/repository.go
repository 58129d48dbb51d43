package organizations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

// Repository handles organization, membership and join-request persistence.
// It implements access.MembershipSource.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orgColumns = `id, name, contact_email, contact_phone, owner_id, notify_injury_alerts, notify_session_uploads, created_at, updated_at`

func scanOrg(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	err := row.Scan(&o.ID, &o.Name, &o.ContactEmail, &o.ContactPhone, &o.OwnerID,
		&o.NotifyInjuryAlerts, &o.NotifySessionUploads, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts an organization and adds the owner as its first member.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO organizations (id, name, contact_email, contact_phone, owner_id, notify_injury_alerts, notify_session_uploads)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, q, org.Name, org.ContactEmail, org.ContactPhone, org.OwnerID,
		org.NotifyInjuryAlerts, org.NotifySessionUploads).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return err
	}
	const qm = `INSERT INTO organization_users (id, organization_id, user_id)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (organization_id, user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, qm, org.ID, org.OwnerID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return scanOrg(r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

// Update updates organization contact info and notification settings.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, contactEmail, contactPhone *string, notifyInjury, notifySessions *bool) error {
	const q = `UPDATE organizations SET
		name = COALESCE($1, name),
		contact_email = COALESCE($2, contact_email),
		contact_phone = COALESCE($3, contact_phone),
		notify_injury_alerts = COALESCE($4, notify_injury_alerts),
		notify_session_uploads = COALESCE($5, notify_session_uploads),
		updated_at = NOW()
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, q, name, contactEmail, contactPhone, notifyInjury, notifySessions, id)
	return err
}

// Delete removes an organization. Owned entities cascade via foreign keys.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

// ListForUser returns organizations the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT o.id, o.name, o.contact_email, o.contact_phone, o.owner_id,
		o.notify_injury_alerts, o.notify_session_uploads, o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN organization_users ou ON ou.organization_id = o.id
		WHERE ou.user_id = $1
		ORDER BY ou.created_at ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// OrganizationIDs returns organization IDs the user belongs to, in
// membership insertion order. Unknown users get an empty set.
func (r *Repository) OrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT organization_id FROM organization_users WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsMember reports whether the user belongs to the organization.
func (r *Repository) IsMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	const q = `SELECT 1 FROM organization_users WHERE organization_id = $1 AND user_id = $2`
	var one int
	err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddMember adds a user to an organization. Idempotent.
func (r *Repository) AddMember(ctx context.Context, orgID, userID uuid.UUID) error {
	const q = `INSERT INTO organization_users (id, organization_id, user_id)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (organization_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, orgID, userID)
	return err
}

// RemoveMember removes a user from an organization.
func (r *Repository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM organization_users WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

// Member is an organization member with user details.
type Member struct {
	ID       uuid.UUID       `json:"id"`
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	UserType models.UserType `json:"user_type"`
	AddedAt  time.Time       `json:"added_at"`
}

// ListMembers returns members of an organization.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	const q = `SELECT ou.id, ou.user_id, u.email, u.full_name, u.user_type, ou.created_at
		FROM organization_users ou
		INNER JOIN users u ON u.id = ou.user_id
		WHERE ou.organization_id = $1
		ORDER BY ou.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &m.UserType, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CreateJoinRequest records a pending join request. Re-requesting resets a
// rejected request to pending.
func (r *Repository) CreateJoinRequest(ctx context.Context, orgID, userID uuid.UUID) (*models.JoinRequest, error) {
	const q = `INSERT INTO org_join_requests (id, organization_id, user_id, status)
		VALUES (gen_random_uuid(), $1, $2, 'pending')
		ON CONFLICT (organization_id, user_id)
		DO UPDATE SET status = 'pending', updated_at = NOW()
		RETURNING id, organization_id, user_id, status, created_at, updated_at`
	var jr models.JoinRequest
	err := r.pool.QueryRow(ctx, q, orgID, userID).
		Scan(&jr.ID, &jr.OrganizationID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &jr, nil
}

// GetJoinRequest returns a join request by ID.
func (r *Repository) GetJoinRequest(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	const q = `SELECT id, organization_id, user_id, status, created_at, updated_at
		FROM org_join_requests WHERE id = $1`
	var jr models.JoinRequest
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&jr.ID, &jr.OrganizationID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &jr, nil
}

// ListJoinRequests returns join requests for an organization, newest first.
func (r *Repository) ListJoinRequests(ctx context.Context, orgID uuid.UUID, status string) ([]models.JoinRequest, error) {
	q := `SELECT id, organization_id, user_id, status, created_at, updated_at
		FROM org_join_requests WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.JoinRequest
	for rows.Next() {
		var jr models.JoinRequest
		if err := rows.Scan(&jr.ID, &jr.OrganizationID, &jr.UserID, &jr.Status, &jr.CreatedAt, &jr.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, jr)
	}
	return list, rows.Err()
}

// ResolveJoinRequest approves or rejects a pending request. Approval adds
// the membership in the same transaction.
func (r *Repository) ResolveJoinRequest(ctx context.Context, id uuid.UUID, approve bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status := models.JoinRequestRejected
	if approve {
		status = models.JoinRequestApproved
	}
	var orgID, userID uuid.UUID
	const q = `UPDATE org_join_requests SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
		RETURNING organization_id, user_id`
	if err := tx.QueryRow(ctx, q, status, id).Scan(&orgID, &userID); err != nil {
		return err
	}
	if approve {
		const qm = `INSERT INTO organization_users (id, organization_id, user_id)
			VALUES (gen_random_uuid(), $1, $2)
			ON CONFLICT (organization_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, qm, orgID, userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

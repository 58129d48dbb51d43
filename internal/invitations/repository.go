package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const invitationColumns = `id, organization_id, email, token, status, invited_by, expires_at, created_at`

// Repository persists organization invitations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitation repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanInvitation(row interface{ Scan(...any) error }) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts an invitation.
func (r *Repository) Create(ctx context.Context, inv *models.Invitation) error {
	const q = `INSERT INTO invitations (organization_id, email, token, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, inv.OrganizationID, inv.Email, inv.Token, inv.Status,
		inv.InvitedBy, inv.ExpiresAt).Scan(&inv.ID, &inv.CreatedAt)
}

// GetByID returns one invitation.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	return scanInvitation(r.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id))
}

// GetByToken looks an invitation up by its opaque token. The public
// validate and accept endpoints use this.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return scanInvitation(r.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
}

// ListByOrg returns an organization's invitations, newest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invitation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []models.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

// Revoke marks a pending invitation revoked. pgx.ErrNoRows means the
// invitation was not pending.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invitations SET status = 'revoked' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Accept marks a pending invitation accepted and adds the accepting user
// to the organization, in one transaction. pgx.ErrNoRows means the
// invitation was not pending anymore.
func (r *Repository) Accept(ctx context.Context, id, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var orgID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE invitations SET status = 'accepted'
		 WHERE id = $1 AND status = 'pending' AND expires_at > $2
		 RETURNING organization_id`, id, time.Now().UTC()).Scan(&orgID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO organization_users (organization_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (organization_id, user_id) DO NOTHING`, orgID, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

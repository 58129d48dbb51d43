package devices

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equitrack/backend/internal/models"
)

const deviceColumns = `id, organization_id, name, serial, status, horse_id, created_at, updated_at`

// Repository persists tracking devices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a device repository on the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanDevice(row interface{ Scan(...any) error }) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.Serial, &d.Status,
		&d.HorseID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a device. Serials are unique platform-wide.
func (r *Repository) Create(ctx context.Context, d *models.Device) error {
	const q = `INSERT INTO devices (organization_id, name, serial, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, d.OrganizationID, d.Name, d.Serial, d.Status).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// GetByID returns one device.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
}

// GetBySerial returns the device with the given serial, in any organization.
// Ingestion uses this to resolve uploads to a horse.
func (r *Repository) GetBySerial(ctx context.Context, serial string) (*models.Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE serial = $1`, serial))
}

// List returns devices for the given organizations, name order. OrgIDs nil
// means no filter; empty means none accessible.
func (r *Repository) List(ctx context.Context, orgIDs []uuid.UUID) ([]models.Device, error) {
	if orgIDs != nil && len(orgIDs) == 0 {
		return []models.Device{}, nil
	}
	var q string
	var args []any
	if orgIDs == nil {
		q = `SELECT ` + deviceColumns + ` FROM devices ORDER BY name, serial`
	} else {
		q = `SELECT ` + deviceColumns + ` FROM devices WHERE organization_id = ANY($1) ORDER BY name, serial`
		args = append(args, orgIDs)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// UpdateParams are the mutable device fields.
type UpdateParams struct {
	Name   *string
	Status *models.DeviceStatus
}

// Update applies a partial update. Serial and organization never change.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	const q = `UPDATE devices SET
		name = COALESCE($1, name),
		status = COALESCE($2, status),
		updated_at = NOW()
		WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, p.Name, p.Status, id)
	return err
}

// LinkHorse attaches the device to a horse, detaching it from any other
// horse first. Both sides of the horse/device link are kept in step.
func (r *Repository) LinkHorse(ctx context.Context, deviceID, horseID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE horses SET device_id = NULL, updated_at = NOW() WHERE device_id = $1`, deviceID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE devices SET horse_id = $1, updated_at = NOW() WHERE id = $2`, horseID, deviceID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE horses SET device_id = $1, updated_at = NOW() WHERE id = $2`, deviceID, horseID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UnlinkHorse detaches the device from its horse, if any.
func (r *Repository) UnlinkHorse(ctx context.Context, deviceID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE horses SET device_id = NULL, updated_at = NOW() WHERE device_id = $1`, deviceID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE devices SET horse_id = NULL, updated_at = NOW() WHERE id = $1`, deviceID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a device. The horse side of the link clears via the
// foreign key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	return err
}

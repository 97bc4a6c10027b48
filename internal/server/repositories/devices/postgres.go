// Package devices persists device types and capture devices in Postgres.
package devices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// UpsertType inserts t or, when a type with the same name exists, overwrites
// its description. t.ID is set to the row's id either way.
func (r *PostgresRepository) UpsertType(ctx context.Context, t *models.DeviceType) error {
	query :=
		`INSERT INTO device_types (name, description)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, t.Name, t.Description).Scan(&t.ID); err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

// EnsureType is UpsertType without the overwrite: an existing row keeps its
// description and t is filled from it.
func (r *PostgresRepository) EnsureType(ctx context.Context, t *models.DeviceType) error {
	query :=
		`INSERT INTO device_types (name, description)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, description`

	if err := r.db.QueryRowContext(ctx, query, t.Name, t.Description).Scan(&t.ID, &t.Description); err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

func (r *PostgresRepository) GetType(ctx context.Context, id int64) (*models.DeviceType, error) {
	t := &models.DeviceType{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM device_types WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return t, nil
}

func (r *PostgresRepository) TypeByName(ctx context.Context, name string) (*models.DeviceType, error) {
	t := &models.DeviceType{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM device_types WHERE name = $1`, name).
		Scan(&t.ID, &t.Name, &t.Description)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return t, nil
}

func (r *PostgresRepository) ListTypes(ctx context.Context) ([]*models.DeviceType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM device_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	defer rows.Close()

	var out []*models.DeviceType
	for rows.Next() {
		t := &models.DeviceType{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return out, nil
}

// Create inserts d. The store generates the unique identifier, the initial
// status and both timestamps; d is updated with them. An unknown type id is
// reported as common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, d *models.Device) error {
	query :=
		`INSERT INTO devices (name, type_id, location, ip_address, mac_address)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, unique_identifier::text, status, registered_at, last_seen_at`

	var status string
	err := r.db.QueryRowContext(ctx, query, d.Name, d.TypeID, d.Location, d.IPAddress, d.MACAddress).
		Scan(&d.ID, &d.UniqueIdentifier, &status, &d.RegisteredAt, &d.LastSeenAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	d.Status = models.DeviceStatus(status)
	return nil
}

const deviceSelect = `SELECT d.id, d.name, d.type_id, t.name, d.unique_identifier::text,
		d.location, d.ip_address, d.mac_address, d.status, d.registered_at, d.last_seen_at
	FROM devices d
	JOIN device_types t ON t.id = d.type_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*models.Device, error) {
	d := &models.Device{}
	var status string
	err := s.Scan(&d.ID, &d.Name, &d.TypeID, &d.TypeName, &d.UniqueIdentifier,
		&d.Location, &d.IPAddress, &d.MACAddress, &status, &d.RegisteredAt, &d.LastSeenAt)
	if err != nil {
		return nil, err
	}
	d.Status = models.DeviceStatus(status)
	return d, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, deviceSelect+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return d, nil
}

// List returns devices ordered by id. A non-empty typeName restricts the
// result to that type.
func (r *PostgresRepository) List(ctx context.Context, typeName string) ([]*models.Device, error) {
	query := deviceSelect + ` WHERE ($1 = '' OR t.name = $1) ORDER BY d.id`

	rows, err := r.db.QueryContext(ctx, query, typeName)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	defer rows.Close()

	var out []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return out, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status models.DeviceStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE devices SET status = $2 WHERE id = $1`, id, string(status))
	return dbx.ExpectOneRow(res, err)
}

func (r *PostgresRepository) Touch(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE devices SET last_seen_at = now() WHERE id = $1`, id)
	return dbx.ExpectOneRow(res, err)
}

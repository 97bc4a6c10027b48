// Package credentials stores admin credentials in Postgres.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the credential table when it is missing. Losing a
// creation race to another process is not an error.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	query :=
		`CREATE TABLE IF NOT EXISTS admin_credentials (
			username      TEXT PRIMARY KEY,
			password_hash BYTEA NOT NULL,
			salt          BYTEA NOT NULL,
			scheme        TEXT NOT NULL DEFAULT 'sha256',
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		err = dbx.ClassifyError(err)
		if errors.Is(err, common.ErrorConflict) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return n, nil
}

// Create inserts c. An existing row with the same username is left alone and
// reported as common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, c *models.AdminCredential) error {
	query :=
		`INSERT INTO admin_credentials (username, password_hash, salt, scheme, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username) DO NOTHING
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		c.Username, c.PasswordHash, c.Salt, c.Scheme, c.IsActive).Scan(&c.CreatedAt)
	if err != nil {
		err = dbx.ClassifyError(err)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: credential %q exists", common.ErrorConflict, c.Username)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.AdminCredential, error) {
	query :=
		`SELECT username, password_hash, salt, scheme, is_active, created_at
		 FROM admin_credentials
		 WHERE username = $1`

	c := &models.AdminCredential{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&c.Username, &c.PasswordHash, &c.Salt, &c.Scheme, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return c, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, username string, hash, salt []byte, scheme string) error {
	query :=
		`UPDATE admin_credentials
		 SET password_hash = $2, salt = $3, scheme = $4
		 WHERE username = $1`

	res, err := r.db.ExecContext(ctx, query, username, hash, salt, scheme)
	return dbx.ExpectOneRow(res, err)
}

// Package identities persists human and AI identities in Postgres.
package identities

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

// CreateHuman inserts h. The caller assigns h.ID.
func (r *PostgresRepository) CreateHuman(ctx context.Context, h *models.Human) error {
	query :=
		`INSERT INTO humans (id, full_name, nick_name, email, phone_number, character_sheet, life_style_preferences, role_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		h.ID, h.FullName, h.NickName, h.Email, h.PhoneNumber,
		h.CharacterSheet, h.LifeStylePreferences, h.RoleID).Scan(&h.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

// CreateAI inserts a and fills in the store-assigned id.
func (r *PostgresRepository) CreateAI(ctx context.Context, a *models.AI) error {
	query :=
		`INSERT INTO ais (name, base_prompt)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, a.Name, a.BasePrompt).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

const humanColumns = `id, full_name, nick_name, email, phone_number, character_sheet, life_style_preferences, role_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanHuman(s scanner) (*models.Human, error) {
	h := &models.Human{}
	err := s.Scan(&h.ID, &h.FullName, &h.NickName, &h.Email, &h.PhoneNumber,
		&h.CharacterSheet, &h.LifeStylePreferences, &h.RoleID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *PostgresRepository) GetHuman(ctx context.Context, id string) (*models.Human, error) {
	query := `SELECT ` + humanColumns + ` FROM humans WHERE id = $1`

	h, err := scanHuman(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return h, nil
}

func (r *PostgresRepository) GetAI(ctx context.Context, id int64) (*models.AI, error) {
	query := `SELECT id, name, base_prompt, created_at FROM ais WHERE id = $1`

	a := &models.AI{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.BasePrompt, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return a, nil
}

// ListHumans returns humans in id order, which for ULIDs is creation order.
func (r *PostgresRepository) ListHumans(ctx context.Context) ([]*models.Human, error) {
	query := `SELECT ` + humanColumns + ` FROM humans ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	defer rows.Close()

	var out []*models.Human
	for rows.Next() {
		h, err := scanHuman(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return out, nil
}

func (r *PostgresRepository) ListAIs(ctx context.Context) ([]*models.AI, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, base_prompt, created_at FROM ais ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	defer rows.Close()

	var out []*models.AI
	for rows.Next() {
		a := &models.AI{}
		if err := rows.Scan(&a.ID, &a.Name, &a.BasePrompt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return out, nil
}

// UpdateHuman overwrites the profile fields of h.ID. Role and creation
// time are not touched.
func (r *PostgresRepository) UpdateHuman(ctx context.Context, h *models.Human) error {
	query :=
		`UPDATE humans
		 SET full_name = $2, nick_name = $3, email = $4, phone_number = $5,
		     character_sheet = $6, life_style_preferences = $7
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		h.ID, h.FullName, h.NickName, h.Email, h.PhoneNumber, h.CharacterSheet, h.LifeStylePreferences)
	return dbx.ExpectOneRow(res, err)
}

func (r *PostgresRepository) UpdateAI(ctx context.Context, a *models.AI) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ais SET name = $2, base_prompt = $3 WHERE id = $1`, a.ID, a.Name, a.BasePrompt)
	return dbx.ExpectOneRow(res, err)
}

// Count returns the number of identities of either kind.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM humans) + (SELECT COUNT(*) FROM ais)`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return n, nil
}

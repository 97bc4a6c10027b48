// Package samples persists voice samples in Postgres.
package samples

import (
	"context"
	"database/sql"
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

// ownerColumns splits an OwnerRef into the owner_kind, human_id and ai_id
// column values; exactly one of the id columns is non-NULL.
func ownerColumns(o models.OwnerRef) (string, sql.NullString, sql.NullInt64) {
	switch o.Kind {
	case models.KindHuman:
		return string(o.Kind), sql.NullString{String: o.HumanID, Valid: true}, sql.NullInt64{}
	default:
		return string(o.Kind), sql.NullString{}, sql.NullInt64{Int64: o.AIID, Valid: true}
	}
}

func ownerFromColumns(kind string, human sql.NullString, ai sql.NullInt64) models.OwnerRef {
	if models.IdentityKind(kind) == models.KindHuman {
		return models.HumanOwner(human.String)
	}
	return models.AIOwner(ai.Int64)
}

// Create inserts s. A missing owner or device is reported as
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, s *models.VoiceSample) error {
	if !s.Owner.Valid() {
		return fmt.Errorf("%w: owner %s", common.ErrorValidation, s.Owner)
	}
	kind, human, ai := ownerColumns(s.Owner)

	query :=
		`INSERT INTO voice_samples (owner_kind, human_id, ai_id, device_id, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, recorded_at`

	err := r.db.QueryRowContext(ctx, query, kind, human, ai, s.DeviceID, s.Payload).Scan(&s.ID, &s.RecordedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	s.Size = len(s.Payload)
	return nil
}

// Get loads a sample including its payload.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.VoiceSample, error) {
	query :=
		`SELECT id, owner_kind, human_id, ai_id, device_id, payload, recorded_at
		 FROM voice_samples
		 WHERE id = $1`

	s := &models.VoiceSample{}
	var (
		kind  string
		human sql.NullString
		ai    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &kind, &human, &ai, &s.DeviceID, &s.Payload, &s.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	s.Owner = ownerFromColumns(kind, human, ai)
	s.Size = len(s.Payload)
	return s, nil
}

// ListByOwner returns the samples of one identity, oldest first, without
// payloads.
func (r *PostgresRepository) ListByOwner(ctx context.Context, owner models.OwnerRef) ([]*models.VoiceSample, error) {
	if !owner.Valid() {
		return nil, fmt.Errorf("%w: owner %s", common.ErrorValidation, owner)
	}
	kind, human, ai := ownerColumns(owner)

	query :=
		`SELECT id, device_id, octet_length(payload), recorded_at
		 FROM voice_samples
		 WHERE owner_kind = $1 AND (human_id = $2 OR ai_id = $3)
		 ORDER BY recorded_at, id`

	rows, err := r.db.QueryContext(ctx, query, kind, human, ai)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	defer rows.Close()

	var out []*models.VoiceSample
	for rows.Next() {
		s := &models.VoiceSample{Owner: owner}
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Size, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return out, nil
}

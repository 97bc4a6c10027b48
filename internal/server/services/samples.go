package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/samples"
)

func validateSample(owner models.OwnerRef, payload []byte) error {
	if len(payload) == 0 {
		return common.ValidationError{Field: "voice sample"}
	}
	if !owner.Valid() {
		return common.ValidationError{Field: "owner", Reason: "must reference exactly one human or AI"}
	}
	return nil
}

// insertSample stores payload for owner on deviceID through repo.
func insertSample(ctx context.Context, repo samples.Repository, owner models.OwnerRef, deviceID int64, payload []byte) (*models.VoiceSample, error) {
	s := &models.VoiceSample{Owner: owner, DeviceID: deviceID, Payload: payload}
	if err := repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// VoiceSampleVault attaches voice samples to identities and devices.
type VoiceSampleVault struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewVoiceSampleVault(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *VoiceSampleVault {
	return &VoiceSampleVault{db: db, repomanager: m, log: log.With("module", "samples")}
}

// Save stores payload for owner on any existing device. Empty payloads and
// owners that are not exactly one identity fail with a validation error; a
// missing device or owner fails with common.ErrorNotFound.
func (v *VoiceSampleVault) Save(ctx context.Context, owner models.OwnerRef, deviceID int64, payload []byte) (*models.VoiceSample, error) {
	return v.save(ctx, owner, deviceID, payload, false)
}

// RegisterVoice is Save restricted to devices of the Microphone type.
func (v *VoiceSampleVault) RegisterVoice(ctx context.Context, owner models.OwnerRef, deviceID int64, payload []byte) (*models.VoiceSample, error) {
	return v.save(ctx, owner, deviceID, payload, true)
}

func (v *VoiceSampleVault) save(ctx context.Context, owner models.OwnerRef, deviceID int64, payload []byte, microphoneOnly bool) (*models.VoiceSample, error) {
	if err := validateSample(owner, payload); err != nil {
		return nil, err
	}

	var s *models.VoiceSample
	err := dbx.WithTx(ctx, v.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		d, err := v.repomanager.Devices(tx).Get(ctx, deviceID)
		if err != nil {
			return fmt.Errorf("device %d: %w", deviceID, err)
		}
		if microphoneOnly && d.TypeName != common.MicrophoneTypeName {
			return common.ValidationError{Field: "device", Reason: "must be a " + common.MicrophoneTypeName}
		}
		s, err = insertSample(ctx, v.repomanager.Samples(tx), owner, deviceID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	v.log.Info(ctx, "voice sample saved", "sample_id", s.ID, "owner", s.Owner.String(), "device_id", deviceID, "size", s.Size)
	return s, nil
}

// ListByOwner returns sample metadata for owner, without payloads.
func (v *VoiceSampleVault) ListByOwner(ctx context.Context, owner models.OwnerRef) ([]*models.VoiceSample, error) {
	if !owner.Valid() {
		return nil, common.ValidationError{Field: "owner", Reason: "must reference exactly one human or AI"}
	}
	return v.repomanager.Samples(v.db).ListByOwner(ctx, owner)
}

// Get returns a sample with its payload.
func (v *VoiceSampleVault) Get(ctx context.Context, id int64) (*models.VoiceSample, error) {
	return v.repomanager.Samples(v.db).Get(ctx, id)
}

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
)

// ProvisionStep names the stage of ProvisionIdentitySetup that failed.
type ProvisionStep int

const (
	StepBegin ProvisionStep = iota
	StepDevice
	StepHuman
	StepHumanVoice
	StepAI
	StepAIVoice
	StepCommit
)

func (s ProvisionStep) String() string {
	switch s {
	case StepBegin:
		return "begin"
	case StepDevice:
		return "device"
	case StepHuman:
		return "human"
	case StepHumanVoice:
		return "human voice sample"
	case StepAI:
		return "ai"
	case StepAIVoice:
		return "ai voice sample"
	case StepCommit:
		return "commit"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// ProvisionError is returned when provisioning fails after validation. The
// transaction has been rolled back; nothing was persisted.
type ProvisionError struct {
	Step ProvisionStep
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provisioning failed at step %d (%s): %v", int(e.Step), e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// ProvisionInput is the submitted setup form.
type ProvisionInput struct {
	Human        HumanInput
	DeviceName   string
	HumanVoice   []byte
	AIName       string
	AIBasePrompt string
	AIVoice      []byte
}

// validate only checks presence; the setup form stores the email as typed.
func (in ProvisionInput) validate() error {
	return common.Required(
		"full name", in.Human.FullName,
		"email", in.Human.Email,
		"AI name", in.AIName,
		"AI base prompt", in.AIBasePrompt,
		"device name", in.DeviceName,
	)
}

// ProvisionResult lists what a successful provisioning created.
type ProvisionResult struct {
	HumanID   string
	AIID      int64
	DeviceID  int64
	SampleIDs []int64
}

// ProvisioningWorkflow creates a human, an AI, their microphone and optional
// voice samples in one transaction.
type ProvisioningWorkflow struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewProvisioningWorkflow(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ProvisioningWorkflow {
	return &ProvisioningWorkflow{db: db, repomanager: m, log: log.With("module", "provisioning")}
}

// ProvisionIdentitySetup validates in and then, inside a single transaction:
// creates a device named in.DeviceName under the Microphone type, inserts the
// human, the human's voice sample if any, the AI and the AI's voice sample if
// any. On failure everything is rolled back and a *ProvisionError names the
// step. Validation failures are returned as common.ValidationError before
// the database is touched. Callers must not retry automatically.
func (w *ProvisioningWorkflow) ProvisionIdentitySetup(ctx context.Context, in ProvisionInput) (*ProvisionResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	res := &ProvisionResult{}
	step := StepBegin

	err := dbx.WithTx(ctx, w.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		devicesRepo := w.repomanager.Devices(tx)
		identitiesRepo := w.repomanager.Identities(tx)
		samplesRepo := w.repomanager.Samples(tx)

		step = StepDevice
		mic, err := ensureMicrophoneType(ctx, devicesRepo)
		if err != nil {
			return err
		}
		d := &models.Device{Name: in.DeviceName, TypeID: mic.ID, TypeName: mic.Name}
		if err := devicesRepo.Create(ctx, d); err != nil {
			return err
		}
		res.DeviceID = d.ID

		step = StepHuman
		h, err := insertHuman(ctx, identitiesRepo, in.Human)
		if err != nil {
			return err
		}
		res.HumanID = h.ID

		if len(in.HumanVoice) > 0 {
			step = StepHumanVoice
			s, err := insertSample(ctx, samplesRepo, h.Owner(), d.ID, in.HumanVoice)
			if err != nil {
				return err
			}
			res.SampleIDs = append(res.SampleIDs, s.ID)
		}

		step = StepAI
		a := &models.AI{Name: in.AIName, BasePrompt: in.AIBasePrompt}
		if err := identitiesRepo.CreateAI(ctx, a); err != nil {
			return err
		}
		res.AIID = a.ID

		if len(in.AIVoice) > 0 {
			step = StepAIVoice
			s, err := insertSample(ctx, samplesRepo, a.Owner(), d.ID, in.AIVoice)
			if err != nil {
				return err
			}
			res.SampleIDs = append(res.SampleIDs, s.ID)
		}

		step = StepCommit
		return nil
	})
	if err != nil {
		w.log.Error(ctx, "provisioning rolled back", "step", step.String(), "error", err)
		return nil, &ProvisionError{Step: step, Err: err}
	}

	w.log.Info(ctx, "identity setup provisioned",
		"human_id", res.HumanID, "ai_id", res.AIID, "device_id", res.DeviceID, "samples", len(res.SampleIDs))
	return res, nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/ids"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/identities"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
)

// HumanInput carries the editable fields of a human profile.
type HumanInput struct {
	FullName             string
	NickName             string
	Email                string
	PhoneNumber          string
	CharacterSheet       *string
	LifeStylePreferences *string
}

func (in HumanInput) validate() error {
	if err := common.Required("full name", in.FullName, "email", in.Email); err != nil {
		return err
	}
	// A bare address only: "Ada <ada@x.io>" parses but must not be stored.
	if a, err := mail.ParseAddress(in.Email); err != nil || a.Address != in.Email {
		return common.ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

func validateAI(name, basePrompt string) error {
	return common.Required("AI name", name, "AI base prompt", basePrompt)
}

// newHumanID is swapped in tests.
var newHumanID = func() (string, error) { return ids.NewULID(time.Now().UTC()) }

// insertHuman assigns an id and inserts the human through repo.
func insertHuman(ctx context.Context, repo identities.Repository, in HumanInput) (*models.Human, error) {
	id, err := newHumanID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	h := &models.Human{
		ID:                   id,
		FullName:             in.FullName,
		NickName:             in.NickName,
		Email:                in.Email,
		PhoneNumber:          in.PhoneNumber,
		CharacterSheet:       in.CharacterSheet,
		LifeStylePreferences: in.LifeStylePreferences,
		RoleID:               common.DefaultHumanRoleID,
	}
	if err := repo.CreateHuman(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// IdentityRegistry manages human and AI identities.
type IdentityRegistry struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewIdentityRegistry(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *IdentityRegistry {
	return &IdentityRegistry{db: db, repomanager: m, log: log.With("module", "identities")}
}

func (r *IdentityRegistry) CreateHuman(ctx context.Context, in HumanInput) (*models.Human, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	h, err := insertHuman(ctx, r.repomanager.Identities(r.db), in)
	if err != nil {
		r.log.Error(ctx, "create human", "error", err)
		return nil, err
	}
	r.log.Info(ctx, "human created", "human_id", h.ID)
	return h, nil
}

func (r *IdentityRegistry) CreateAI(ctx context.Context, name, basePrompt string) (*models.AI, error) {
	if err := validateAI(name, basePrompt); err != nil {
		return nil, err
	}
	a := &models.AI{Name: name, BasePrompt: basePrompt}
	if err := r.repomanager.Identities(r.db).CreateAI(ctx, a); err != nil {
		r.log.Error(ctx, "create ai", "error", err)
		return nil, err
	}
	r.log.Info(ctx, "ai created", "ai_id", a.ID)
	return a, nil
}

// List returns every identity, humans first.
func (r *IdentityRegistry) List(ctx context.Context) ([]models.Identity, error) {
	repo := r.repomanager.Identities(r.db)

	humans, err := repo.ListHumans(ctx)
	if err != nil {
		return nil, err
	}
	ais, err := repo.ListAIs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Identity, 0, len(humans)+len(ais))
	for _, h := range humans {
		out = append(out, h)
	}
	for _, a := range ais {
		out = append(out, a)
	}
	return out, nil
}

func (r *IdentityRegistry) GetHuman(ctx context.Context, id string) (*models.Human, error) {
	return r.repomanager.Identities(r.db).GetHuman(ctx, id)
}

func (r *IdentityRegistry) GetAI(ctx context.Context, id int64) (*models.AI, error) {
	return r.repomanager.Identities(r.db).GetAI(ctx, id)
}

func (r *IdentityRegistry) UpdateHuman(ctx context.Context, id string, in HumanInput) error {
	if err := common.Required("id", id); err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	h := &models.Human{
		ID:                   id,
		FullName:             in.FullName,
		NickName:             in.NickName,
		Email:                in.Email,
		PhoneNumber:          in.PhoneNumber,
		CharacterSheet:       in.CharacterSheet,
		LifeStylePreferences: in.LifeStylePreferences,
	}
	if err := r.repomanager.Identities(r.db).UpdateHuman(ctx, h); err != nil {
		return fmt.Errorf("update human %s: %w", id, err)
	}
	r.log.Info(ctx, "human updated", "human_id", id)
	return nil
}

func (r *IdentityRegistry) UpdateAI(ctx context.Context, id int64, name, basePrompt string) error {
	if err := validateAI(name, basePrompt); err != nil {
		return err
	}
	if err := r.repomanager.Identities(r.db).UpdateAI(ctx, &models.AI{ID: id, Name: name, BasePrompt: basePrompt}); err != nil {
		return fmt.Errorf("update ai %d: %w", id, err)
	}
	r.log.Info(ctx, "ai updated", "ai_id", id)
	return nil
}

// IsSetupComplete reports whether at least one identity exists.
func (r *IdentityRegistry) IsSetupComplete(ctx context.Context) (bool, error) {
	n, err := r.repomanager.Identities(r.db).Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

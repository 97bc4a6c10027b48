package identities

import (
	"context"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type Repository interface {
	CreateHuman(ctx context.Context, h *models.Human) error
	CreateAI(ctx context.Context, a *models.AI) error
	GetHuman(ctx context.Context, id string) (*models.Human, error)
	GetAI(ctx context.Context, id int64) (*models.AI, error)
	ListHumans(ctx context.Context) ([]*models.Human, error)
	ListAIs(ctx context.Context) ([]*models.AI, error)
	UpdateHuman(ctx context.Context, h *models.Human) error
	UpdateAI(ctx context.Context, a *models.AI) error
	Count(ctx context.Context) (int, error)
}

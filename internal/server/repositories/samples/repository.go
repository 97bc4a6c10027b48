package samples

import (
	"context"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.VoiceSample) error
	Get(ctx context.Context, id int64) (*models.VoiceSample, error)
	ListByOwner(ctx context.Context, owner models.OwnerRef) ([]*models.VoiceSample, error)
}

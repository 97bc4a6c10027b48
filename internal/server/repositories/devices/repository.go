package devices

import (
	"context"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type Repository interface {
	UpsertType(ctx context.Context, t *models.DeviceType) error
	EnsureType(ctx context.Context, t *models.DeviceType) error
	GetType(ctx context.Context, id int64) (*models.DeviceType, error)
	TypeByName(ctx context.Context, name string) (*models.DeviceType, error)
	ListTypes(ctx context.Context) ([]*models.DeviceType, error)

	Create(ctx context.Context, d *models.Device) error
	Get(ctx context.Context, id int64) (*models.Device, error)
	List(ctx context.Context, typeName string) ([]*models.Device, error)
	SetStatus(ctx context.Context, id int64, status models.DeviceStatus) error
	Touch(ctx context.Context, id int64) error
}

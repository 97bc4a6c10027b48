package credentials

import (
	"context"

	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
)

type Repository interface {
	EnsureSchema(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, c *models.AdminCredential) error
	GetByUsername(ctx context.Context, username string) (*models.AdminCredential, error)
	UpdatePassword(ctx context.Context, username string, hash, salt []byte, scheme string) error
}

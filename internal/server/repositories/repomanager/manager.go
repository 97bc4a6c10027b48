package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/devices"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/identities"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/samples"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Identities(db dbx.DBTX) identities.Repository
	Devices(db dbx.DBTX) devices.Repository
	Samples(db dbx.DBTX) samples.Repository
}

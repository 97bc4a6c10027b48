// Package server wires voxkeeper together: it opens the database, applies
// migrations, makes sure the admin credential exists and hosts the admin
// console on top of the registries.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/voxkeeper/internal/console"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/config"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/voxkeeper/internal/server/services"
	"github.com/dmitrijs2005/voxkeeper/internal/server/session"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials *services.CredentialStore
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager) (*App, error) {
	creds, err := services.NewCredentialStore(db, m, c, logger)
	if err != nil {
		return nil, err
	}
	return &App{config: c, logger: logger, db: db, repomanager: m, credentials: creds}, nil
}

// Bootstrap prepares the store: migrations, the credential table and the
// default admin account when no credential exists yet.
func (app *App) Bootstrap(ctx context.Context) error {
	if err := app.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	if err := app.credentials.EnsureSchema(ctx); err != nil {
		return err
	}

	seeded, err := app.credentials.SeedDefaultIfEmpty(ctx)
	if err != nil {
		return err
	}
	if seeded {
		app.logger.Warn(ctx, "default admin credential created, change its password with passwd",
			"username", services.DefaultAdminUsername)
	}

	app.logger.Info(ctx, "bootstrap complete")
	return nil
}

// Console builds the admin console over the registries. The archive command
// is only available when an S3 bucket is configured.
func (app *App) Console(in io.Reader, out io.Writer) *console.App {
	d := console.Deps{
		Guard:      session.NewGuard(app.credentials, app.config, app.logger),
		Identities: services.NewIdentityRegistry(app.db, app.repomanager, app.logger),
		Devices:    services.NewDeviceRegistry(app.db, app.repomanager, app.logger),
		Samples:    services.NewVoiceSampleVault(app.db, app.repomanager, app.logger),
		Provision:  services.NewProvisioningWorkflow(app.db, app.repomanager, app.logger),
		Logger:     app.logger,
		TicketFile: app.config.TicketFile,
	}
	if app.config.S3Bucket != "" {
		d.Archive = services.NewSampleArchive(app.db, app.repomanager, app.config, app.logger)
	}
	return console.NewApp(d, in, out)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run bootstraps the store and, when interactive is set, serves the console
// on stdin/stdout until the operator exits. The database is closed on return.
func (app *App) Run(ctx context.Context, interactive bool) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.Bootstrap(ctx); err != nil {
		app.logger.Error(ctx, "bootstrap failed", "error", err)
		return err
	}

	if interactive {
		app.Console(os.Stdin, os.Stdout).Run(ctx)
	}
	return nil
}

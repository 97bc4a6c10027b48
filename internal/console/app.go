// Package console is the interactive admin console. It owns one session per
// run and only lets registry commands through while that session is
// authenticated.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/dmitrijs2005/voxkeeper/internal/filex"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/services"
	"github.com/dmitrijs2005/voxkeeper/internal/server/session"
)

type IdentityService interface {
	CreateHuman(ctx context.Context, in services.HumanInput) (*models.Human, error)
	CreateAI(ctx context.Context, name, basePrompt string) (*models.AI, error)
	List(ctx context.Context) ([]models.Identity, error)
	GetHuman(ctx context.Context, id string) (*models.Human, error)
	GetAI(ctx context.Context, id int64) (*models.AI, error)
	UpdateHuman(ctx context.Context, id string, in services.HumanInput) error
	UpdateAI(ctx context.Context, id int64, name, basePrompt string) error
	IsSetupComplete(ctx context.Context) (bool, error)
}

type DeviceService interface {
	CreateType(ctx context.Context, name, description string) (*models.DeviceType, error)
	ListTypes(ctx context.Context) ([]*models.DeviceType, error)
	CreateDevice(ctx context.Context, in services.DeviceInput) (*models.Device, error)
	ListDevices(ctx context.Context) ([]*models.Device, error)
	ListMicrophones(ctx context.Context) ([]*models.Device, error)
	SetStatus(ctx context.Context, id int64, status models.DeviceStatus) error
}

type SampleService interface {
	RegisterVoice(ctx context.Context, owner models.OwnerRef, deviceID int64, payload []byte) (*models.VoiceSample, error)
	ListByOwner(ctx context.Context, owner models.OwnerRef) ([]*models.VoiceSample, error)
}

type Provisioner interface {
	ProvisionIdentitySetup(ctx context.Context, in services.ProvisionInput) (*services.ProvisionResult, error)
}

type Archiver interface {
	Archive(ctx context.Context, sampleID int64) (*services.ArchivedSample, error)
}

// Deps are the collaborators of an App. Archive may be nil, which disables
// the archive command.
type Deps struct {
	Guard      *session.Guard
	Identities IdentityService
	Devices    DeviceService
	Samples    SampleService
	Provision  Provisioner
	Archive    Archiver
	Logger     logging.Logger

	// TicketFile, when set, persists a session ticket across runs.
	TicketFile string
}

type App struct {
	Deps
	session *session.Session
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	return &App{
		Deps:    d,
		session: session.New(),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) authorize() error {
	return a.Guard.Require(a.session)
}

func (a *App) status() string {
	switch a.session.State {
	case session.Authenticated:
		return fmt.Sprintf("(%s)", a.session.Username)
	case session.Locked:
		return "(locked)"
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Run restores a persisted session if possible and then serves commands
// until EOF or exit. The in-memory session is reset when Run returns.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to voxkeeper admin console (type 'help' for commands)")
	a.resume(ctx)
	runREPL(ctx, a, a.status, a.reader, a.out)
	*a.session = session.Session{}
}

func (a *App) resume(ctx context.Context) {
	if a.TicketFile == "" {
		return
	}
	b, err := os.ReadFile(a.TicketFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			a.Logger.Warn(ctx, "read session ticket", "error", err)
		}
		return
	}
	s, err := a.Guard.Resume(ctx, strings.TrimSpace(string(b)))
	if err != nil {
		a.Logger.Info(ctx, "stored session ticket rejected", "error", err)
		_ = os.Remove(a.TicketFile)
		return
	}
	a.session = s
	a.println("Resumed session for", s.Username)
}

func (a *App) saveTicket(ctx context.Context) {
	if a.TicketFile == "" {
		return
	}
	t, err := a.Guard.Ticket(a.session)
	if err != nil {
		a.Logger.Warn(ctx, "issue session ticket", "error", err)
		return
	}
	if err := filex.WritePrivate(a.TicketFile, []byte(t)); err != nil {
		a.Logger.Warn(ctx, "write session ticket", "error", err)
	}
}

func (a *App) dropTicket() {
	if a.TicketFile != "" {
		_ = os.Remove(a.TicketFile)
	}
}

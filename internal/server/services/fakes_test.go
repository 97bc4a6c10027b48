package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/dbx"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/devices"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/identities"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/samples"
	"github.com/google/uuid"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- credentials ---

type fakeCredRepo struct {
	rows map[string]*models.AdminCredential

	schemaErr error
	countErr  error
	createErr error
	getErr    error
	updateErr error

	creates int
	updates int
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{rows: map[string]*models.AdminCredential{}}
}

func (f *fakeCredRepo) EnsureSchema(context.Context) error { return f.schemaErr }

func (f *fakeCredRepo) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.rows), nil
}

func (f *fakeCredRepo) Create(_ context.Context, c *models.AdminCredential) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[c.Username]; ok {
		return common.ErrorConflict
	}
	cp := *c
	cp.CreatedAt = time.Now()
	f.rows[c.Username] = &cp
	return nil
}

func (f *fakeCredRepo) GetByUsername(_ context.Context, username string) (*models.AdminCredential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.rows[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCredRepo) UpdatePassword(_ context.Context, username string, hash, salt []byte, scheme string) error {
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	c, ok := f.rows[username]
	if !ok {
		return common.ErrorNotFound
	}
	c.PasswordHash, c.Salt, c.Scheme = hash, salt, scheme
	return nil
}

// --- identities ---

type fakeIdentityRepo struct {
	humans map[string]*models.Human
	ais    map[int64]*models.AI
	nextAI int64

	createHumanErr error
	createAIErr    error
	listErr        error
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{humans: map[string]*models.Human{}, ais: map[int64]*models.AI{}}
}

func (f *fakeIdentityRepo) CreateHuman(_ context.Context, h *models.Human) error {
	if f.createHumanErr != nil {
		return f.createHumanErr
	}
	if _, ok := f.humans[h.ID]; ok {
		return common.ErrorConflict
	}
	h.CreatedAt = time.Now()
	cp := *h
	f.humans[h.ID] = &cp
	return nil
}

func (f *fakeIdentityRepo) CreateAI(_ context.Context, a *models.AI) error {
	if f.createAIErr != nil {
		return f.createAIErr
	}
	f.nextAI++
	a.ID = f.nextAI
	a.CreatedAt = time.Now()
	cp := *a
	f.ais[a.ID] = &cp
	return nil
}

func (f *fakeIdentityRepo) GetHuman(_ context.Context, id string) (*models.Human, error) {
	h, ok := f.humans[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return h, nil
}

func (f *fakeIdentityRepo) GetAI(_ context.Context, id int64) (*models.AI, error) {
	a, ok := f.ais[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeIdentityRepo) ListHumans(context.Context) ([]*models.Human, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Human
	for _, h := range f.humans {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeIdentityRepo) ListAIs(context.Context) ([]*models.AI, error) {
	var out []*models.AI
	for _, a := range f.ais {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeIdentityRepo) UpdateHuman(_ context.Context, h *models.Human) error {
	cur, ok := f.humans[h.ID]
	if !ok {
		return common.ErrorNotFound
	}
	h.RoleID, h.CreatedAt = cur.RoleID, cur.CreatedAt
	cp := *h
	f.humans[h.ID] = &cp
	return nil
}

func (f *fakeIdentityRepo) UpdateAI(_ context.Context, a *models.AI) error {
	cur, ok := f.ais[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Name, cur.BasePrompt = a.Name, a.BasePrompt
	return nil
}

func (f *fakeIdentityRepo) Count(context.Context) (int, error) {
	return len(f.humans) + len(f.ais), nil
}

// --- devices ---

type fakeDeviceRepo struct {
	types   map[string]*models.DeviceType
	devices map[int64]*models.Device
	nextID  int64

	ensureErr error
	createErr error
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{types: map[string]*models.DeviceType{}, devices: map[int64]*models.Device{}}
}

func (f *fakeDeviceRepo) addType(name, description string) *models.DeviceType {
	f.nextID++
	t := &models.DeviceType{ID: f.nextID, Name: name, Description: description}
	f.types[name] = t
	return t
}

func (f *fakeDeviceRepo) UpsertType(_ context.Context, t *models.DeviceType) error {
	if cur, ok := f.types[t.Name]; ok {
		cur.Description = t.Description
		t.ID = cur.ID
		return nil
	}
	t.ID = f.addType(t.Name, t.Description).ID
	return nil
}

func (f *fakeDeviceRepo) EnsureType(_ context.Context, t *models.DeviceType) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	if cur, ok := f.types[t.Name]; ok {
		t.ID, t.Description = cur.ID, cur.Description
		return nil
	}
	t.ID = f.addType(t.Name, t.Description).ID
	return nil
}

func (f *fakeDeviceRepo) GetType(_ context.Context, id int64) (*models.DeviceType, error) {
	for _, t := range f.types {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDeviceRepo) TypeByName(_ context.Context, name string) (*models.DeviceType, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeDeviceRepo) ListTypes(context.Context) ([]*models.DeviceType, error) {
	var out []*models.DeviceType
	for _, t := range f.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDeviceRepo) Create(ctx context.Context, d *models.Device) error {
	if f.createErr != nil {
		return f.createErr
	}
	t, err := f.GetType(ctx, d.TypeID)
	if err != nil {
		return err
	}
	f.nextID++
	d.ID = f.nextID
	d.TypeName = t.Name
	d.UniqueIdentifier = uuid.NewString()
	d.Status = models.DeviceActive
	d.RegisteredAt = time.Now()
	d.LastSeenAt = d.RegisteredAt
	cp := *d
	f.devices[d.ID] = &cp
	return nil
}

func (f *fakeDeviceRepo) Get(_ context.Context, id int64) (*models.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDeviceRepo) List(_ context.Context, typeName string) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range f.devices {
		if typeName == "" || d.TypeName == typeName {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDeviceRepo) SetStatus(_ context.Context, id int64, status models.DeviceStatus) error {
	d, ok := f.devices[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.Status = status
	return nil
}

func (f *fakeDeviceRepo) Touch(_ context.Context, id int64) error {
	d, ok := f.devices[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.LastSeenAt = time.Now()
	return nil
}

// --- samples ---

type fakeSampleRepo struct {
	rows   []*models.VoiceSample
	nextID int64

	createErr error
}

func (f *fakeSampleRepo) Create(_ context.Context, s *models.VoiceSample) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	s.ID = f.nextID
	s.Size = len(s.Payload)
	s.RecordedAt = time.Now()
	cp := *s
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSampleRepo) Get(_ context.Context, id int64) (*models.VoiceSample, error) {
	for _, s := range f.rows {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSampleRepo) ListByOwner(_ context.Context, owner models.OwnerRef) ([]*models.VoiceSample, error) {
	var out []*models.VoiceSample
	for _, s := range f.rows {
		if s.Owner == owner {
			cp := *s
			cp.Payload = nil
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- manager ---

type fakeRepoManager struct {
	c *fakeCredRepo
	i *fakeIdentityRepo
	d *fakeDeviceRepo
	s *fakeSampleRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		c: newFakeCredRepo(),
		i: newFakeIdentityRepo(),
		d: newFakeDeviceRepo(),
		s: &fakeSampleRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Credentials(dbx.DBTX) credentials.Repository  { return m.c }
func (m *fakeRepoManager) Identities(dbx.DBTX) identities.Repository    { return m.i }
func (m *fakeRepoManager) Devices(dbx.DBTX) devices.Repository          { return m.d }
func (m *fakeRepoManager) Samples(dbx.DBTX) samples.Repository          { return m.s }

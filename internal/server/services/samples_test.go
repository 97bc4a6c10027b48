package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVault(t *testing.T, rm *fakeRepoManager) (*VoiceSampleVault, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	return NewVoiceSampleVault(db, rm, logging.Nop()), mock
}

func seedDevice(t *testing.T, rm *fakeRepoManager, typeName string) *models.Device {
	t.Helper()
	typ, ok := rm.d.types[typeName]
	if !ok {
		typ = rm.d.addType(typeName, "")
	}
	d := &models.Device{Name: typeName + " device", TypeID: typ.ID}
	require.NoError(t, rm.d.Create(context.Background(), d))
	return d
}

func TestSave_AnyDeviceType(t *testing.T) {
	rm := newFakeRepoManager()
	cam := seedDevice(t, rm, "Camera")
	v, mock := newVault(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()

	s, err := v.Save(context.Background(), models.AIOwner(3), cam.ID, []byte("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Size)
	assert.Len(t, rm.s.rows, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_Validation(t *testing.T) {
	tests := []struct {
		name    string
		owner   models.OwnerRef
		payload []byte
		field   string
	}{
		{"empty payload", models.HumanOwner("01A"), nil, "voice sample"},
		{"no owner", models.OwnerRef{}, []byte{1}, "owner"},
		{"both owners", models.OwnerRef{Kind: models.KindAI, HumanID: "01A", AIID: 1}, []byte{1}, "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newFakeRepoManager()
			d := seedDevice(t, rm, common.MicrophoneTypeName)
			v, mock := newVault(t, rm)

			_, err := v.Save(context.Background(), tt.owner, d.ID, tt.payload)
			var ve common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, rm.s.rows)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSave_MissingDeviceRollsBack(t *testing.T) {
	rm := newFakeRepoManager()
	v, mock := newVault(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := v.Save(context.Background(), models.HumanOwner("01A"), 404, []byte{1})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, rm.s.rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterVoice_RequiresMicrophone(t *testing.T) {
	rm := newFakeRepoManager()
	cam := seedDevice(t, rm, "Camera")
	mic := seedDevice(t, rm, common.MicrophoneTypeName)
	v, mock := newVault(t, rm)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := v.RegisterVoice(context.Background(), models.HumanOwner("01A"), cam.ID, []byte{1})
	var ve common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "device", ve.Field)

	_, err = v.RegisterVoice(context.Background(), models.HumanOwner("01A"), mic.ID, []byte{1})
	require.NoError(t, err)
	assert.Len(t, rm.s.rows, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerAndGet(t *testing.T) {
	rm := newFakeRepoManager()
	mic := seedDevice(t, rm, common.MicrophoneTypeName)
	v, mock := newVault(t, rm)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	ctx := context.Background()

	saved, err := v.Save(ctx, models.HumanOwner("01A"), mic.ID, []byte("abc"))
	require.NoError(t, err)
	_, err = v.Save(ctx, models.AIOwner(1), mic.ID, []byte("xyz"))
	require.NoError(t, err)

	list, err := v.ListByOwner(ctx, models.HumanOwner("01A"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Payload)

	got, err := v.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Payload)

	_, err = v.ListByOwner(ctx, models.OwnerRef{})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	"github.com/dmitrijs2005/voxkeeper/internal/common"
	"github.com/dmitrijs2005/voxkeeper/internal/logging"
	"github.com/dmitrijs2005/voxkeeper/internal/server/models"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/devices"
	"github.com/dmitrijs2005/voxkeeper/internal/server/repositories/repomanager"
)

// DeviceInput carries the caller-supplied fields of a new device.
type DeviceInput struct {
	Name       string
	TypeID     int64
	Location   *string
	IPAddress  *string
	MACAddress *string
}

func (in DeviceInput) validate() error {
	if err := common.Required("device name", in.Name); err != nil {
		return err
	}
	if in.IPAddress != nil && net.ParseIP(*in.IPAddress) == nil {
		return common.ValidationError{Field: "ip address", Reason: "is not a valid IP address"}
	}
	if in.MACAddress != nil {
		if _, err := net.ParseMAC(*in.MACAddress); err != nil {
			return common.ValidationError{Field: "mac address", Reason: "is not a valid MAC address"}
		}
	}
	return nil
}

// ensureMicrophoneType returns the Microphone device type, creating it when
// missing. An existing description is kept.
func ensureMicrophoneType(ctx context.Context, repo devices.Repository) (*models.DeviceType, error) {
	t := &models.DeviceType{Name: common.MicrophoneTypeName, Description: common.MicrophoneTypeDescription}
	if err := repo.EnsureType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeviceRegistry manages device types and devices.
type DeviceRegistry struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewDeviceRegistry(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *DeviceRegistry {
	return &DeviceRegistry{db: db, repomanager: m, log: log.With("module", "devices")}
}

// CreateType inserts a device type or overwrites the description of the
// existing type with the same name. The id of an existing type is kept.
func (r *DeviceRegistry) CreateType(ctx context.Context, name, description string) (*models.DeviceType, error) {
	if err := common.Required("type name", name); err != nil {
		return nil, err
	}
	t := &models.DeviceType{Name: name, Description: description}
	if err := r.repomanager.Devices(r.db).UpsertType(ctx, t); err != nil {
		r.log.Error(ctx, "upsert device type", "error", err)
		return nil, err
	}
	r.log.Info(ctx, "device type saved", "type_id", t.ID, "name", t.Name)
	return t, nil
}

func (r *DeviceRegistry) ListTypes(ctx context.Context) ([]*models.DeviceType, error) {
	return r.repomanager.Devices(r.db).ListTypes(ctx)
}

func (r *DeviceRegistry) TypeByName(ctx context.Context, name string) (*models.DeviceType, error) {
	return r.repomanager.Devices(r.db).TypeByName(ctx, name)
}

// CreateDevice registers a device under an existing type. An unknown type
// fails with common.ErrorNotFound.
func (r *DeviceRegistry) CreateDevice(ctx context.Context, in DeviceInput) (*models.Device, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	repo := r.repomanager.Devices(r.db)
	t, err := repo.GetType(ctx, in.TypeID)
	if err != nil {
		return nil, fmt.Errorf("device type %d: %w", in.TypeID, err)
	}

	d := &models.Device{
		Name:       in.Name,
		TypeID:     t.ID,
		TypeName:   t.Name,
		Location:   in.Location,
		IPAddress:  in.IPAddress,
		MACAddress: in.MACAddress,
	}
	if err := repo.Create(ctx, d); err != nil {
		r.log.Error(ctx, "create device", "error", err)
		return nil, err
	}
	r.log.Info(ctx, "device created", "device_id", d.ID, "type", t.Name, "unique_identifier", d.UniqueIdentifier)
	return d, nil
}

func (r *DeviceRegistry) ListDevices(ctx context.Context) ([]*models.Device, error) {
	return r.repomanager.Devices(r.db).List(ctx, "")
}

// ListMicrophones returns the devices a voice sample may be registered on.
func (r *DeviceRegistry) ListMicrophones(ctx context.Context) ([]*models.Device, error) {
	return r.repomanager.Devices(r.db).List(ctx, common.MicrophoneTypeName)
}

func (r *DeviceRegistry) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	return r.repomanager.Devices(r.db).Get(ctx, id)
}

// SetStatus moves a device between active, inactive and retired. Devices
// are never deleted.
func (r *DeviceRegistry) SetStatus(ctx context.Context, id int64, status models.DeviceStatus) error {
	if !status.Valid() {
		return common.ValidationError{Field: "status", Reason: "must be active, inactive or retired"}
	}
	if err := r.repomanager.Devices(r.db).SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("device %d: %w", id, err)
	}
	r.log.Info(ctx, "device status changed", "device_id", id, "status", status)
	return nil
}

// Touch records that the device was seen now.
func (r *DeviceRegistry) Touch(ctx context.Context, id int64) error {
	if err := r.repomanager.Devices(r.db).Touch(ctx, id); err != nil {
		return fmt.Errorf("device %d: %w", id, err)
	}
	return nil
}

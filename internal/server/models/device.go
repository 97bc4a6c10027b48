package models

import "time"

type DeviceStatus string

const (
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
	DeviceRetired  DeviceStatus = "retired"
)

// Valid reports whether s is a known status.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceActive, DeviceInactive, DeviceRetired:
		return true
	}
	return false
}

// DeviceType groups devices; Name is unique.
type DeviceType struct {
	ID          int64
	Name        string
	Description string
}

// Device is a capture device. UniqueIdentifier is generated by the store
// and never reused.
type Device struct {
	ID               int64
	Name             string
	TypeID           int64
	TypeName         string
	UniqueIdentifier string
	Location         *string
	IPAddress        *string
	MACAddress       *string
	Status           DeviceStatus
	RegisteredAt     time.Time
	LastSeenAt       time.Time
}

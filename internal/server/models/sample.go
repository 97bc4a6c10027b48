package models

import "time"

// VoiceSample is an audio payload bound to one identity and one device.
// Payload is nil when the sample was loaded without its bytes.
type VoiceSample struct {
	ID         int64
	Owner      OwnerRef
	DeviceID   int64
	Payload    []byte
	Size       int
	RecordedAt time.Time
}

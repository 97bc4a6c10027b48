package common

const (
	// MicrophoneTypeName is the device type every registration flow attaches
	// voice samples to.
	MicrophoneTypeName        = "Microphone"
	MicrophoneTypeDescription = "A microphone device used for voice recordings"

	// DefaultHumanRoleID is the "user" role assigned to provisioned humans.
	DefaultHumanRoleID = 2
)

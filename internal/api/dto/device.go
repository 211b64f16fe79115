package dto

// RegisterDeviceRequest binds a device to one of the caller's licenses
type RegisterDeviceRequest struct {
	DeviceID   string `json:"deviceId" validate:"required,max=255"`
	DeviceName string `json:"deviceName,omitempty" validate:"omitempty,max=255"`
	DeviceType string `json:"deviceType" validate:"required,devicetype"`
	LicenseID  string `json:"licenseId,omitempty"`
}

package device

import "time"

// Type is the operating system family of a device
type Type string

const (
	TypeWindows Type = "windows"
	TypeMac     Type = "mac"
	TypeLinux   Type = "linux"
	TypeAndroid Type = "android"
)

// Valid reports whether t is a supported device type
func (t Type) Valid() bool {
	switch t {
	case TypeWindows, TypeMac, TypeLinux, TypeAndroid:
		return true
	}
	return false
}

// Device is a machine registered against a license
type Device struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	LicenseID    string    `json:"licenseId"`
	DeviceID     string    `json:"deviceId"`
	DeviceName   *string   `json:"deviceName,omitempty"`
	DeviceType   Type      `json:"deviceType"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Registration is the caller's request to register a device
type Registration struct {
	DeviceID   string
	DeviceName *string
	DeviceType Type
	LicenseID  string // optional
}

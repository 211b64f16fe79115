package dto

// SendLicenseRequest records an operator-issued license
type SendLicenseRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Plan       string `json:"plan" validate:"required,plan"`
	LicenseKey string `json:"licenseKey" validate:"required,licensekey"`
}

// FreeLicenseRequest asks an operator for a complimentary license
type FreeLicenseRequest struct {
	Plan string `json:"plan" validate:"required,paidplan"`
}

package client

import "time"

// User represents a portal account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// License is an issued license key
type License struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Plan         string     `json:"plan"`
	LicenseKey   string     `json:"licenseKey"`
	Status       string     `json:"status"`
	DeviceCount  int        `json:"deviceCount"`
	MaxDevices   int        `json:"maxDevices"`
	PurchaseDate time.Time  `json:"purchaseDate"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
}

// LicenseHistoryEntry is a manually sent license with its owner
type LicenseHistoryEntry struct {
	License
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// FreeRequest is a complimentary license request
type FreeRequest struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	RequestedPlan string     `json:"requestedPlan"`
	Status        string     `json:"status"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time `json:"rejectedAt,omitempty"`
	LicenseID     *string    `json:"licenseId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Checkout holds what the gateway widget needs to take a payment
type Checkout struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Plan     string `json:"plan"`
	KeyID    string `json:"keyId"`
}

// VerifyRequest carries the gateway's checkout callback fields
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Plan      string `json:"plan"`
}

// VerifyResult is the license issued for a verified payment
type VerifyResult struct {
	License    *License `json:"license"`
	PurchaseID string   `json:"purchaseId"`
}

// Purchase is a completed payment
type Purchase struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	LicenseID     *string   `json:"licenseId,omitempty"`
	OrderID       string    `json:"orderId"`
	Plan          string    `json:"plan"`
	AmountMinor   int64     `json:"amountMinor"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Order is a checkout attempt; PaymentID is set once the provider charged it
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Plan        string    `json:"plan"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	PaymentID   string    `json:"paymentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Eligibility is the advisory free download check
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
	Code     string `json:"code,omitempty"`
}

// QuotaStatus is the public free-trial pool
type QuotaStatus struct {
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
	Limit     int  `json:"limit"`
	Enabled   bool `json:"enabled"`
}

// DownloadSettings is the admin view of the free-trial pool
type DownloadSettings struct {
	Enabled        bool `json:"enabled"`
	TotalDownloads int  `json:"totalDownloads"`
	Limit          int  `json:"limit"`
	Remaining      int  `json:"remaining"`
}

// Device is a machine bound to a license
type Device struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	LicenseID    string    `json:"licenseId"`
	DeviceID     string    `json:"deviceId"`
	DeviceName   *string   `json:"deviceName,omitempty"`
	DeviceType   string    `json:"deviceType"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// RegisterDeviceRequest binds a device to a license
type RegisterDeviceRequest struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName,omitempty"`
	DeviceType string `json:"deviceType"`
	LicenseID  string `json:"licenseId,omitempty"`
}

// AdminStats are the dashboard counters
type AdminStats struct {
	TotalUsers          int64  `json:"totalUsers"`
	ActiveLicenses      int64  `json:"activeLicenses"`
	TotalRevenue        string `json:"totalRevenue"`
	PendingFreeRequests int64  `json:"pendingFreeRequests"`
}

// UserPage is one page of users
type UserPage struct {
	Items      []*User `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalItems int64   `json:"totalItems"`
	TotalPages int     `json:"totalPages"`
}

// HealthResponse represents a readiness check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

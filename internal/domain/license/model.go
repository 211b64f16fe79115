package license

import (
	"fmt"
	"time"
)

// Plan is a named license tier
type Plan string

const (
	PlanPersonal   Plan = "personal"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Status is the lifecycle state of a license
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// PlanTerms holds the commercial terms of a plan
type PlanTerms struct {
	Plan        Plan
	DisplayName string
	Price       int64 // whole currency units
	MaxDevices  int
	Purchasable bool
}

var plans = map[Plan]PlanTerms{
	PlanPersonal:   {Plan: PlanPersonal, DisplayName: "Personal", Price: 1999, MaxDevices: 1, Purchasable: true},
	PlanPro:        {Plan: PlanPro, DisplayName: "Pro", Price: 4999, MaxDevices: 3, Purchasable: true},
	PlanEnterprise: {Plan: PlanEnterprise, DisplayName: "Enterprise", Price: 0, MaxDevices: 100},
}

// ParsePlan validates a plan name
func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if _, ok := plans[p]; !ok {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// Valid reports whether p is a recognized plan
func (p Plan) Valid() bool {
	_, ok := plans[p]
	return ok
}

// Terms returns the plan terms
func (p Plan) Terms() PlanTerms {
	return plans[p]
}

// MaxDevices returns the device allowance of the plan
func (p Plan) MaxDevices() int {
	return plans[p].MaxDevices
}

// Purchasable reports whether the plan can be bought through checkout
func (p Plan) Purchasable() bool {
	return plans[p].Purchasable
}

// AmountMinor returns the plan price in minor currency units (paise)
func (p Plan) AmountMinor() int64 {
	return plans[p].Price * 100
}

// DisplayName returns the human name of the plan
func (p Plan) DisplayName() string {
	if s, ok := plans[p]; ok {
		return s.DisplayName
	}
	return string(p)
}

// License is an issued license key owned by one user
type License struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Plan         Plan       `json:"plan"`
	LicenseKey   string     `json:"licenseKey"`
	Status       Status     `json:"status"`
	DeviceCount  int        `json:"deviceCount"`
	MaxDevices   int        `json:"maxDevices"`
	PurchaseDate time.Time  `json:"purchaseDate"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	SentAt       *time.Time `json:"sentAt,omitempty"`
}

// New builds an active license with the plan's device allowance
func New(userID string, plan Plan, key string, now time.Time) *License {
	return &License{
		UserID:       userID,
		Plan:         plan,
		LicenseKey:   key,
		Status:       StatusActive,
		MaxDevices:   plan.MaxDevices(),
		PurchaseDate: now,
	}
}

// IsActive reports whether the license currently grants entitlement
func (l *License) IsActive() bool {
	return l.Status == StatusActive
}

// RemainingDevices returns how many more devices can be registered
func (l *License) RemainingDevices() int {
	if n := l.MaxDevices - l.DeviceCount; n > 0 {
		return n
	}
	return 0
}

// HistoryEntry is a manually sent license with its owner's contact details
type HistoryEntry struct {
	License
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

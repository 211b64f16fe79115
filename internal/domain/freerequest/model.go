package freerequest

import (
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
)

// Status is the review state of a request
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request asks an operator for a complimentary license
type Request struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	RequestedPlan license.Plan `json:"requestedPlan"`
	Status        Status       `json:"status"`
	ApprovedAt    *time.Time   `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time   `json:"rejectedAt,omitempty"`
	LicenseID     *string      `json:"licenseId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// IsPending reports whether the request still awaits review
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// Requestable reports whether a free license may be requested for plan
func Requestable(p license.Plan) bool {
	return p == license.PlanPersonal || p == license.PlanPro
}

package purchase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/qsecurex/portal/internal/domain/license"
)

// Status is the settlement state of a purchase
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Purchase records a verified payment for a plan
type Purchase struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	LicenseID     *string      `json:"licenseId,omitempty"`
	OrderID       string       `json:"orderId"`
	Plan          license.Plan `json:"plan"`
	AmountMinor   int64        `json:"amountMinor"`
	Currency      string       `json:"currency"`
	Status        Status       `json:"status"`
	TransactionID string       `json:"transactionId"`
	PaymentMethod string       `json:"paymentMethod"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// MarshalJSON adds the decimal amount next to the minor-unit value
func (p Purchase) MarshalJSON() ([]byte, error) {
	type alias Purchase
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{alias(p), FormatMinor(p.AmountMinor)})
}

// Amount renders the minor-unit amount as a decimal string
func (p *Purchase) Amount() string {
	return FormatMinor(p.AmountMinor)
}

// FormatMinor renders minor units (paise, cents) as "1999.00"
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// Package entitlement answers read-only questions about what a user may
// download. Answers are advisory; the gatekeeper re-checks at download time
// and the database constraints are authoritative.
package entitlement

import (
	"context"

	"github.com/qsecurex/portal/internal/domain/license"
)

// Evaluator reads entitlement state
type Evaluator interface {
	// HasActiveLicense reports whether the user holds an active license for plan
	HasActiveLicense(ctx context.Context, userID string, plan license.Plan) (bool, error)

	// RemainingFreeSlots returns max(0, GlobalFreeLimit - consumed)
	RemainingFreeSlots(ctx context.Context) (int, error)

	// HasUserConsumedFreeSlot reports whether the user took the free download
	HasUserConsumedFreeSlot(ctx context.Context, userID string) (bool, error)
}

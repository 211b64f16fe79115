package license

import "context"

// Service defines license issuance and lookup
type Service interface {
	// Issue creates a license with a generated key
	Issue(ctx context.Context, userID string, plan Plan) (*License, error)

	// Grant creates a license with an operator-chosen key and stamps sentAt
	Grant(ctx context.Context, userID string, plan Plan, key string) (*License, error)

	ListByUser(ctx context.Context, userID string) ([]*License, error)

	List(ctx context.Context) ([]*License, error)

	// History returns manually sent licenses
	History(ctx context.Context) ([]*HistoryEntry, error)
}

package purchase

import "context"

// Repository defines the interface for purchase data access. Purchases are
// written together with their license by the payment repository.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*Purchase, error)

	List(ctx context.Context) ([]*Purchase, error)

	// TotalRevenue sums completed purchases in minor units
	TotalRevenue(ctx context.Context) (int64, error)
}

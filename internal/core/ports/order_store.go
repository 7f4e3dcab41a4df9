// Package ports defines the contracts between the application core and
// infrastructure. Adapters implement these interfaces, which keeps the
// dispatch logic independent of the database and the routing provider.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/order"
)

// OrderStore defines the persistence contract for order aggregates.
type OrderStore interface {
	// Add persists a new order. The order must be valid and not already
	// exist in the store.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	Get(ctx context.Context, id string) (*order.Order, error)

	// GetAll retrieves every order in arrival order (oldest inserted
	// first). Rows that cannot be restored into a valid aggregate are
	// skipped, not surfaced as errors.
	GetAll(ctx context.Context) ([]*order.Order, error)
}

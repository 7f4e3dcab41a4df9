// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence.
package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/partner"
	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command
// handlers. These abstractions ensure a batch of order changes is
// persisted atomically.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderStoreFactory provides access to the order store within a
	// transaction.
	OrderStoreFactory interface {
		OrderStore() ports.OrderStore
	}

	// OrderUoW manages transactions for order operations.
	OrderUoW interface {
		TxManager
		OrderStoreFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// PartnerPool is the slice of the partner pool that assignment needs:
// picking a partner, confirming the pick with a busy-until time, and
// undoing the pick when routing or persistence fails.
type PartnerPool interface {
	ReconcileAndSelect(now time.Time) (*partner.Partner, error)
	MarkBusy(id int, freeAt time.Time) error
	Release(id int) error
}

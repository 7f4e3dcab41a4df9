package services

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrNoPendingOrders is returned when there is nothing to dispatch.
	// A wait condition, not a failure.
	ErrNoPendingOrders = errors.New("no pending orders")

	// ErrAwaitingSecondOrder is returned when exactly one order is pending.
	// Solo dispatch is deliberately delayed for one cycle to allow a nearby
	// second order to arrive and share the trip.
	ErrAwaitingSecondOrder = errors.New("awaiting a second order before dispatch")
)

// BatchPlanner is the domain service that decides which pending orders
// travel together on one trip.
//
// The policy examines only the two oldest pending orders: if their
// destinations lie within the clustering radius of each other they are
// batched into one trip, otherwise the oldest goes alone. Looking at just
// the head of the queue keeps dispatch latency bounded and FIFO-fair;
// batches never exceed two orders.
//
// Example usage:
//
//	planner, _ := services.NewBatchPlanner(300)
//	batch, err := planner.PlanBatch(pendingOldestFirst)
//	switch {
//	case errors.Is(err, services.ErrNoPendingOrders):
//	    // idle
//	case errors.Is(err, services.ErrAwaitingSecondOrder):
//	    // hold for one more cycle
//	case err != nil:
//	    // invalid input
//	default:
//	    // dispatch batch (1 or 2 orders)
//	}
type BatchPlanner struct {
	radiusMeters float64
}

// NewBatchPlanner creates a planner with the given clustering radius in
// meters. The radius must be positive.
func NewBatchPlanner(radiusMeters float64) (BatchPlanner, error) {
	if radiusMeters <= 0 {
		return BatchPlanner{}, errs.NewValueIsInvalidErrorWithCause(
			"radiusMeters", fmt.Errorf("%f is not greater than 0", radiusMeters))
	}

	return BatchPlanner{radiusMeters: radiusMeters}, nil
}

// RadiusMeters returns the configured clustering radius.
func (p BatchPlanner) RadiusMeters() float64 {
	return p.radiusMeters
}

// PlanBatch selects the next batch from pending orders.
//
// The input must already be sorted oldest first (ascending wait time, absent
// timestamps first, ties in arrival order); the planner does not re-sort.
// Every order must be valid and assignable.
//
// Returns a batch of two when the two oldest destinations are within the
// clustering radius, a batch of one (the oldest) otherwise, and a sentinel
// error when fewer than two orders are pending.
func (p BatchPlanner) PlanBatch(pending []*order.Order) ([]*order.Order, error) {
	for _, o := range pending {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		if err := o.ValidateAssign(); err != nil {
			return nil, err
		}
	}

	switch len(pending) {
	case 0:
		return nil, ErrNoPendingOrders
	case 1:
		return nil, ErrAwaitingSecondOrder
	}

	first, second := pending[0], pending[1]

	distance, err := first.Location().DistanceMeters(second.Location())
	if err != nil {
		return nil, err
	}

	if distance <= p.radiusMeters {
		return []*order.Order{first, second}, nil
	}

	return []*order.Order{first}, nil
}

package commands

import (
	"context"
	"math"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AssignBatchCommandHandler orchestrates one dispatch attempt end to end.
//
// The handler loads pending orders oldest first, asks the BatchPlanner
// for the next batch, reserves a partner, routes the round trip
// depot -> drop-offs -> depot, and persists the assignment for every
// order in the batch inside a single transaction. The partner
// reservation is confirmed only after the transaction commits; any
// failure after selection releases the partner, so a failed attempt
// leaves no partner stuck busy.
//
// Wait conditions surface as sentinel errors the caller can match:
//
//	services.ErrNoPendingOrders      nothing to dispatch
//	services.ErrAwaitingSecondOrder  holding a lone order for one cycle
//	partner.ErrNoPartnerAvailable    every partner is out on a trip
//	ports.ErrRoutingUnavailable      routing provider cannot be reached
type AssignBatchCommandHandler struct {
	uowFactory     OrderUoWFactory
	pool           PartnerPool
	planner        services.BatchPlanner
	routing        ports.RoutingClient
	depot          kernel.GeoPoint
	returnEtaRatio float64
}

// NewAssignBatchCommandHandler creates a handler for dispatch attempts.
// The return ETA ratio is the fraction of the delivery ETA budgeted for
// the trip back to the depot; it must lie in (0, 1].
func NewAssignBatchCommandHandler(
	uowFactory OrderUoWFactory,
	pool PartnerPool,
	planner services.BatchPlanner,
	routing ports.RoutingClient,
	depot kernel.GeoPoint,
	returnEtaRatio float64,
) (AssignBatchCommandHandler, error) {
	if err := depot.Validate(); err != nil {
		return AssignBatchCommandHandler{}, err
	}
	if returnEtaRatio <= 0 || returnEtaRatio > 1 {
		return AssignBatchCommandHandler{}, errs.NewValueIsInvalidError("returnEtaRatio")
	}

	return AssignBatchCommandHandler{
		uowFactory:     uowFactory,
		pool:           pool,
		planner:        planner,
		routing:        routing,
		depot:          depot,
		returnEtaRatio: returnEtaRatio,
	}, nil
}

// Handle processes one dispatch attempt.
func (h AssignBatchCommandHandler) Handle(ctx context.Context, command AssignBatchCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	now := command.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	store := uow.OrderStore()

	all, err := store.GetAll(ctx)
	if err != nil {
		return err
	}

	batch, err := h.planner.PlanBatch(pendingOldestFirst(all))
	if err != nil {
		return err
	}

	assignee, err := h.pool.ReconcileAndSelect(now)
	if err != nil {
		return err
	}

	etaMinutes, returnEtaMinutes, err := h.routeBatch(ctx, batch)
	if err != nil {
		_ = h.pool.Release(assignee.ID())
		return err
	}

	for _, o := range batch {
		if err = o.Assign(assignee.ID(), etaMinutes, returnEtaMinutes, now); err != nil {
			_ = h.pool.Release(assignee.ID())
			return err
		}
		if err = store.Update(ctx, o); err != nil {
			_ = h.pool.Release(assignee.ID())
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		_ = h.pool.Release(assignee.ID())
		return err
	}

	busyFor := time.Duration(etaMinutes+returnEtaMinutes) * time.Minute
	return h.pool.MarkBusy(assignee.ID(), now.Add(busyFor))
}

// routeBatch asks the routing provider for the round-trip duration and
// converts it into delivery and return ETAs in whole minutes.
func (h AssignBatchCommandHandler) routeBatch(
	ctx context.Context, batch []*order.Order,
) (etaMinutes, returnEtaMinutes int, err error) {
	stops := make([]kernel.GeoPoint, 0, len(batch)+2)
	stops = append(stops, h.depot)
	for _, o := range batch {
		stops = append(stops, o.Location())
	}
	stops = append(stops, h.depot)

	duration, err := h.routing.Route(ctx, stops)
	if err != nil {
		return 0, 0, err
	}

	etaMinutes = int(math.Round(duration.Seconds() / 60))
	returnEtaMinutes = int(math.Round(h.returnEtaRatio * float64(etaMinutes)))
	return etaMinutes, returnEtaMinutes, nil
}

// pendingOldestFirst filters unassigned orders and sorts them by age:
// orders without a creation timestamp first, then ascending timestamp.
// The sort is stable, so arrival order breaks ties.
func pendingOldestFirst(all []*order.Order) []*order.Order {
	pending := make([]*order.Order, 0, len(all))
	for _, o := range all {
		if o.Status() == order.Unassigned {
			pending = append(pending, o)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		left, right := pending[i].CreatedAt(), pending[j].CreatedAt()
		switch {
		case left == nil:
			return right != nil
		case right == nil:
			return false
		default:
			return left.Before(*right)
		}
	})

	return pending
}

package commands

import (
	"context"
)

// AdvanceStatusesCommandHandler promotes due in-transit orders to
// delivered. All promotions of one sweep are persisted in a single
// transaction; a sweep that finds nothing due commits nothing and
// succeeds.
type AdvanceStatusesCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewAdvanceStatusesCommandHandler creates a handler for status sweeps.
func NewAdvanceStatusesCommandHandler(uowFactory OrderUoWFactory) AdvanceStatusesCommandHandler {
	return AdvanceStatusesCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes one status sweep and returns the number of orders
// promoted to delivered.
func (h AdvanceStatusesCommandHandler) Handle(ctx context.Context, command AdvanceStatusesCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	store := uow.OrderStore()

	all, err := store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, o := range all {
		if !o.DueForDelivery(command.Now()) {
			continue
		}
		if err = o.Deliver(); err != nil {
			return 0, err
		}
		if err = store.Update(ctx, o); err != nil {
			return 0, err
		}
		promoted++
	}

	if promoted == 0 {
		return 0, nil
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return promoted, nil
}

package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a request to register a new delivery
// order awaiting dispatch.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(uuid.NewString(), time.Now().UTC(), dropoff, 3)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   string
	createdAt time.Time
	location  kernel.GeoPoint
	itemCount int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates that the order ID is not empty, the timestamp is set, the
// drop-off location is constructed, and the item count is positive.
func NewCreateOrderCommand(
	orderID string, createdAt time.Time, location kernel.GeoPoint, itemCount int,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setCreatedAt(createdAt),
		orderCommand.setLocation(location),
		orderCommand.setItemCount(itemCount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() string {
	return c.orderID
}

// CreatedAt returns the moment the order entered the system.
func (c CreateOrderCommand) CreatedAt() time.Time {
	return c.createdAt
}

// Location returns the drop-off location.
func (c CreateOrderCommand) Location() kernel.GeoPoint {
	return c.location
}

// ItemCount returns the number of items in the order.
func (c CreateOrderCommand) ItemCount() int {
	return c.itemCount
}

func (c *CreateOrderCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}

	c.createdAt = createdAt
	return nil
}

func (c *CreateOrderCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *CreateOrderCommand) setItemCount(itemCount int) error {
	if itemCount <= 0 {
		return errs.NewValueIsInvalidError("itemCount")
	}

	c.itemCount = itemCount
	return nil
}

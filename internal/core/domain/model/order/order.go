package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

// Order represents a delivery order, the aggregate root of the dispatch
// engine. It is created externally by the order source in unassigned state
// and mutated exclusively by this engine afterwards.
//
// Order maintains these invariants:
//   - Identifier is a non-empty opaque string
//   - Item count is positive
//   - Status transitions follow the Unassigned -> InTransit -> Delivered
//     state machine; InTransit is entered only through Assign (which also
//     sets partner, ETA and the delivery window) and Delivered only through
//     Deliver, each at most once
//   - Partner, ETA and return-ETA are set together or not at all
type Order struct {
	// id is the opaque order identifier assigned by the order source
	id string

	// createdAt is the creation timestamp; nil until first written
	createdAt *time.Time

	// location is the delivery destination
	location kernel.GeoPoint

	// itemCount is the number of items in the order (must be positive)
	itemCount int

	// status is the current state in the order lifecycle
	status Status

	// partnerID identifies the assigned delivery partner (nil if unassigned)
	partnerID *int

	// etaMinutes is the one-way travel estimate in minutes (nil until assigned)
	etaMinutes *int

	// returnEtaMinutes is the return-trip estimate in minutes (nil until assigned)
	returnEtaMinutes *int

	// deliverBy and returnBy are the wall-clock delivery window stamps
	// written at assignment time
	deliverBy *time.Time
	returnBy  *time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a fresh Order in Unassigned status with no partner or
// ETA fields set. createdAt may be nil: the order source does not always
// stamp a timestamp, in which case assignment stamps it later.
func NewOrder(id string, createdAt *time.Time, location kernel.GeoPoint, itemCount int) (*Order, error) {
	o := &Order{
		status:        Unassigned,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setItemCount(itemCount),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from a persisted row, including its
// status, partner assignment, ETAs and delivery window. Unlike NewOrder it
// accepts any valid lifecycle state, but rejects rows whose status and
// partner assignment disagree.
func RestoreOrder(
	id string,
	createdAt *time.Time,
	location kernel.GeoPoint,
	itemCount int,
	status Status,
	partnerID *int,
	etaMinutes *int,
	returnEtaMinutes *int,
	deliverBy *time.Time,
	returnBy *time.Time,
) (*Order, error) {
	o := &Order{
		createdAt:        createdAt,
		partnerID:        partnerID,
		etaMinutes:       etaMinutes,
		returnEtaMinutes: returnEtaMinutes,
		deliverBy:        deliverBy,
		returnBy:         returnBy,
		isConstructed:    true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setLocation(location),
		o.setItemCount(itemCount),
		o.setStatus(status),
		status.ValidateCanHavePartner(partnerID != nil),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id == other.id
}

// ID returns the order's opaque identifier.
func (o *Order) ID() string {
	return o.id
}

// CreatedAt returns the creation timestamp, or nil if not yet stamped.
func (o *Order) CreatedAt() *time.Time {
	return o.createdAt
}

// Location returns the delivery destination.
func (o *Order) Location() kernel.GeoPoint {
	return o.location
}

// ItemCount returns the number of items in the order.
func (o *Order) ItemCount() int {
	return o.itemCount
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// PartnerID returns the assigned partner identifier, or nil if unassigned.
func (o *Order) PartnerID() *int {
	return o.partnerID
}

// ETAMinutes returns the one-way travel estimate, or nil if unassigned.
func (o *Order) ETAMinutes() *int {
	return o.etaMinutes
}

// ReturnETAMinutes returns the return-trip estimate, or nil if unassigned.
func (o *Order) ReturnETAMinutes() *int {
	return o.returnEtaMinutes
}

// DeliverBy returns the wall-clock delivery stamp written at assignment.
func (o *Order) DeliverBy() *time.Time {
	return o.deliverBy
}

// ReturnBy returns the wall-clock return stamp written at assignment.
func (o *Order) ReturnBy() *time.Time {
	return o.returnBy
}

// ValidateAssign reports whether the order can currently be assigned.
func (o *Order) ValidateAssign() error {
	return o.status.ValidateAssign()
}

// Assign binds the order to a partner with the computed travel estimates and
// moves it to InTransit. The delivery window is derived from now:
// deliver-by = now + eta, return-by = deliver-by + return-eta. If the order
// source never stamped a creation timestamp, now becomes the creation time.
//
// This is the only way an order enters InTransit.
func (o *Order) Assign(partnerID int, etaMinutes int, returnEtaMinutes int, now time.Time) error {
	if partnerID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"partnerID", fmt.Errorf("%d is not a valid partner identifier", partnerID))
	}
	if etaMinutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"etaMinutes", fmt.Errorf("%d is negative", etaMinutes))
	}
	if returnEtaMinutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"returnEtaMinutes", fmt.Errorf("%d is negative", returnEtaMinutes))
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	deliverBy := now.Add(time.Duration(etaMinutes) * time.Minute)
	returnBy := deliverBy.Add(time.Duration(returnEtaMinutes) * time.Minute)

	o.status = newStatus
	o.partnerID = &partnerID
	o.etaMinutes = &etaMinutes
	o.returnEtaMinutes = &returnEtaMinutes
	o.deliverBy = &deliverBy
	o.returnBy = &returnBy

	if o.createdAt == nil {
		stamped := now
		o.createdAt = &stamped
	}

	return nil
}

// Deliver marks the order as delivered.
// Valid only from InTransit; this is the only way an order reaches Delivered.
func (o *Order) Deliver() error {
	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// DeliveryWindow recomputes the delivery window from the stored creation
// timestamp and ETAs: [createdAt+eta, createdAt+eta+returnEta). Returns
// ok=false when the creation timestamp or either estimate is missing.
func (o *Order) DeliveryWindow() (start time.Time, end time.Time, ok bool) {
	if o.createdAt == nil || o.etaMinutes == nil || o.returnEtaMinutes == nil {
		return time.Time{}, time.Time{}, false
	}

	start = o.createdAt.Add(time.Duration(*o.etaMinutes) * time.Minute)
	end = start.Add(time.Duration(*o.returnEtaMinutes) * time.Minute)
	return start, end, true
}

// DueForDelivery reports whether the order should be promoted to Delivered
// at the given instant: it is in transit and now falls inside its delivery
// window. An in-transit order inspected only after its window has already
// closed is never considered due; that dead zone is inherited behavior,
// kept deliberately.
func (o *Order) DueForDelivery(now time.Time) bool {
	if o.status != InTransit {
		return false
	}

	start, end, ok := o.DeliveryWindow()
	if !ok {
		return false
	}

	return !now.Before(start) && now.Before(end)
}

// setID validates and sets the order identifier.
func (o *Order) setID(id string) error {
	if id == "" {
		return errs.NewValueIsRequiredError("orderID")
	}
	o.id = id
	return nil
}

// setLocation validates and sets the delivery destination.
func (o *Order) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

// setItemCount validates and sets the item count.
func (o *Order) setItemCount(itemCount int) error {
	if itemCount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"itemCount", fmt.Errorf("%d is not greater than 0", itemCount))
	}
	o.itemCount = itemCount
	return nil
}

// setStatus validates and sets the lifecycle status.
func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

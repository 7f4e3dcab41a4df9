package order

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions:
//
//	Unassigned ──> InTransit ──> Delivered
//
// Delivered is terminal. Each transition may happen only once: an order
// enters InTransit exclusively through assignment and Delivered exclusively
// through status advancement.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Unassigned is the initial status set by the order source.
	// Orders in this status are waiting to be batched and dispatched.
	Unassigned

	// InTransit indicates the order has been assigned to a partner and is
	// on its way.
	InTransit

	// Delivered indicates the order reached its destination.
	// This is a final state with no further transitions.
	Delivered
)

// getStatusStrings returns the wire representation of each Status.
// The store persists statuses as lowercase strings.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Unassigned: "unassigned",
		InTransit:  "in_transit",
		Delivered:  "delivered",
	}
}

// getValidStatusStrings returns only valid Status values, to support validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Unassigned: "unassigned",
		InTransit:  "in_transit",
		Delivered:  "delivered",
	}
}

// StatusFromString parses a store status string into a Status.
// Input is case-normalized, so "Unassigned" and "UNASSIGNED" both parse.
// Returns an error for unrecognized values.
func StatusFromString(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getValidStatusStrings() {
		if str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a recognized status", s))
}

// Validate checks if the Status value is one of the valid lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase wire name of the status.
// It implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ValidateAssign checks whether the status allows assignment without
// performing the transition. Only Unassigned orders can be assigned;
// reassignment of in-transit orders is not allowed.
func (s Status) ValidateAssign() error {
	if s != Unassigned {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}
	return nil
}

// ValidateCanHavePartner validates consistency between order status and
// partner assignment: unassigned orders must have no partner, assigned and
// delivered orders must have one.
func (s Status) ValidateCanHavePartner(partner bool) error {
	if partner && s != InTransit && s != Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have a partner", s.String()),
		)
	}

	if !partner && (s == InTransit || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no partner", s.String()),
		)
	}

	return nil
}

// Assign transitions the status to InTransit.
// Valid only from Unassigned; assignment happens at most once.
func (s Status) Assign() (Status, error) {
	if err := s.ValidateAssign(); err != nil {
		return 0, err
	}

	return InTransit, nil
}

// Deliver transitions the status to Delivered.
// Valid only from InTransit; Delivered is terminal and never re-entered.
func (s Status) Deliver() (Status, error) {
	if s != InTransit {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to deliver", s.String()),
		)
	}

	return Delivered, nil
}

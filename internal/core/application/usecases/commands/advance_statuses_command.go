package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAdvanceStatusesCommandIsNotConstructed = errors.New(
	"AdvanceStatusesCommand must be created via NewAdvanceStatusesCommand constructor",
)

// AdvanceStatusesCommand triggers one status sweep: every in-transit
// order whose delivery window contains the given instant is promoted to
// delivered.
type AdvanceStatusesCommand struct { //nolint:recvcheck //using for validation
	now time.Time

	guard guard.ConstructorGuard
}

// NewAdvanceStatusesCommand creates a command for a status sweep
// evaluated at the given instant.
func NewAdvanceStatusesCommand(now time.Time) (AdvanceStatusesCommand, error) {
	if now.IsZero() {
		return AdvanceStatusesCommand{}, errs.NewValueIsRequiredError("now")
	}

	return AdvanceStatusesCommand{
		now:   now,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceStatusesCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceStatusesCommandIsNotConstructed)
}

// Now returns the instant the sweep is evaluated against.
func (c AdvanceStatusesCommand) Now() time.Time {
	return c.now
}

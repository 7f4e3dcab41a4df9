package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAssignBatchCommandIsNotConstructed = errors.New(
	"AssignBatchCommand must be created via NewAssignBatchCommand constructor",
)

// AssignBatchCommand triggers one dispatch attempt: cluster the oldest
// pending orders into a batch, pick a partner, route the trip, and
// persist the assignment. The command carries the wall-clock instant the
// attempt is evaluated against, so the whole attempt sees one consistent
// notion of "now".
type AssignBatchCommand struct { //nolint:recvcheck //using for validation
	now time.Time

	guard guard.ConstructorGuard
}

// NewAssignBatchCommand creates a command for a single dispatch attempt
// evaluated at the given instant.
func NewAssignBatchCommand(now time.Time) (AssignBatchCommand, error) {
	if now.IsZero() {
		return AssignBatchCommand{}, errs.NewValueIsRequiredError("now")
	}

	return AssignBatchCommand{
		now:   now,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignBatchCommand) Validate() error {
	return c.guard.Validate(ErrAssignBatchCommandIsNotConstructed)
}

// Now returns the instant the dispatch attempt is evaluated against.
func (c AssignBatchCommand) Now() time.Time {
	return c.now
}

package partner

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPartnerIsNotConstructed is returned when using an improperly
// initialized Partner.
var ErrPartnerIsNotConstructed = errors.New("Partner must be created via NewPartner constructor")

// Partner represents a delivery partner in the fixed pool.
//
// A partner is available if and only if its free-at timestamp is unset or
// already passed; free-at is meaningful only while the partner is busy.
// Partners are stationed at the depot and are not tracked while moving.
type Partner struct {
	// id is the positive integer identifier, unique within the pool
	id int

	// available reports whether the partner can take a new trip
	available bool

	// freeAt is the instant the partner finishes its current round trip;
	// nil while available
	freeAt *time.Time

	// location is the partner's station, the depot
	location kernel.GeoPoint

	// guard ensures the partner was properly constructed
	guard guard.ConstructorGuard
}

// NewPartner creates an available Partner stationed at the given depot.
// The identifier must be positive.
func NewPartner(id int, depot kernel.GeoPoint) (*Partner, error) {
	p := &Partner{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setID(id), p.setLocation(depot)); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate ensures the Partner was created through NewPartner.
func (p *Partner) Validate() error {
	if p == nil {
		return ErrPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrPartnerIsNotConstructed)
}

// ID returns the partner's identifier.
func (p *Partner) ID() int {
	return p.id
}

// Available reports whether the partner can take a new trip.
// This flag is reconciled lazily by the pool at selection time.
func (p *Partner) Available() bool {
	return p.available
}

// FreeAt returns the instant the partner finishes its current round trip,
// or nil while available.
func (p *Partner) FreeAt() *time.Time {
	return p.freeAt
}

// Location returns the partner's station.
func (p *Partner) Location() kernel.GeoPoint {
	return p.location
}

// markBusy takes the partner off the pool until freeAt.
func (p *Partner) markBusy(freeAt time.Time) {
	p.available = false
	p.freeAt = &freeAt
}

// release makes the partner available again and clears free-at.
func (p *Partner) release() {
	p.available = true
	p.freeAt = nil
}

// reserve takes the partner off the pool without a free-at yet; used by
// selection so the busy duration can be computed after routing succeeds.
func (p *Partner) reserve() {
	p.available = false
	p.freeAt = nil
}

// freeAtPassed reports whether a busy partner's round trip has finished.
func (p *Partner) freeAtPassed(now time.Time) bool {
	return p.freeAt != nil && !now.Before(*p.freeAt)
}

func (p *Partner) setID(id int) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"partnerID", fmt.Errorf("%d is not greater than 0", id))
	}
	p.id = id
	return nil
}

func (p *Partner) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	p.location = location
	return nil
}

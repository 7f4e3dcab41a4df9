package partner

import (
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrNoPartnerAvailable is returned by selection when every partner in the
// pool is busy. This is a wait condition, not an operator-facing failure:
// the batch stays pending and is retried on the next dispatch cycle.
var ErrNoPartnerAvailable = errors.New("no delivery partner available")

// Pool holds the fixed set of delivery partners for the process lifetime.
// Partners are created once at startup and never added or removed.
//
// Availability is reconciled lazily: a busy partner whose free-at has
// passed is released as a byproduct of the next selection, not by a timer.
// Selection reserves the chosen partner in the same critical section that
// picks it, so a concurrent observer can never see one partner selected
// twice; the caller then either confirms with MarkBusy once the trip
// duration is known, or undoes the reservation with Release.
//
// The pool is the only mutable in-process state of the engine and is lost
// on restart by design; durable state lives in the order store.
type Pool struct {
	mu       sync.Mutex
	partners []*Partner
}

// NewPool creates a pool of size partners stationed at the depot,
// numbered 1..size, all available.
func NewPool(size int, depot kernel.GeoPoint) (*Pool, error) {
	if size <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("pool size", size, 1, "unbounded")
	}
	if err := depot.Validate(); err != nil {
		return nil, err
	}

	partners := make([]*Partner, 0, size)
	for i := range size {
		p, err := NewPartner(i+1, depot)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}

	return &Pool{partners: partners}, nil
}

// Size returns the fixed number of partners in the pool.
func (pl *Pool) Size() int {
	return len(pl.partners)
}

// ReconcileAndSelect releases every partner whose free-at has passed, then
// reserves and returns the first available partner in identifier order.
// Selection is stable and deterministic. Returns ErrNoPartnerAvailable when
// all partners are busy.
//
// The returned partner is reserved (unavailable, no free-at yet): the caller
// must follow up with MarkBusy or Release.
func (pl *Pool) ReconcileAndSelect(now time.Time) (*Partner, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	for _, p := range pl.partners {
		if !p.available && p.freeAtPassed(now) {
			p.release()
		}
		if p.available {
			p.reserve()
			return p, nil
		}
	}

	return nil, ErrNoPartnerAvailable
}

// MarkBusy confirms a reservation: the partner stays unavailable until
// freeAt, the end of its round trip.
func (pl *Pool) MarkBusy(id int, freeAt time.Time) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	p := pl.find(id)
	if p == nil {
		return errs.NewObjectNotFoundError("partnerID", id)
	}

	p.markBusy(freeAt)
	return nil
}

// Release makes a partner available again, clearing its free-at. Used to
// undo a reservation when the assignment it was selected for falls through.
func (pl *Pool) Release(id int) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	p := pl.find(id)
	if p == nil {
		return errs.NewObjectNotFoundError("partnerID", id)
	}

	p.release()
	return nil
}

// PartnerView is a read-only copy of one partner's state.
type PartnerView struct {
	ID        int
	Available bool
	FreeAt    *time.Time
}

// Snapshot returns a consistent copy of the pool state in identifier order,
// for read-only surfaces. It does not reconcile availability; reconciliation
// happens only at selection time.
func (pl *Pool) Snapshot() []PartnerView {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	views := make([]PartnerView, 0, len(pl.partners))
	for _, p := range pl.partners {
		var freeAt *time.Time
		if p.freeAt != nil {
			t := *p.freeAt
			freeAt = &t
		}
		views = append(views, PartnerView{
			ID:        p.id,
			Available: p.available,
			FreeAt:    freeAt,
		})
	}

	return views
}

// find returns the partner with the given id, or nil.
// Caller must hold the mutex.
func (pl *Pool) find(id int) *Partner {
	for _, p := range pl.partners {
		if p.id == id {
			return p
		}
	}
	return nil
}

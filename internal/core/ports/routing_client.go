package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ErrRoutingUnavailable is returned when the routing provider cannot
// produce a duration for a route: network failure, provider outage, or a
// response the client cannot interpret. A wait condition for the dispatch
// cycle, not a fatal error.
var ErrRoutingUnavailable = errors.New("routing service unavailable")

// RoutingClient estimates travel time along a multi-stop route.
type RoutingClient interface {
	// Route returns the driving duration for visiting the stops in the
	// given order. At least two stops are required.
	Route(ctx context.Context, stops []kernel.GeoPoint) (time.Duration, error)
}

// Package queries contains read-only operations for the HTTP surface.
// Queries bypass the aggregate layer and read projections straight from
// the database, per the CQRS split.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var ErrGetAllOrdersQueryIsNotConstructed = errors.New(
	"GetAllOrdersQuery must be created via NewGetAllOrdersQuery constructor",
)

// GetAllOrdersQuery retrieves every order with its dispatch state for
// monitoring: status, assigned partner, travel estimates and the
// delivery window stamps.
type GetAllOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAllOrdersQuery creates a query to retrieve all orders.
func NewGetAllOrdersQuery() GetAllOrdersQuery {
	return GetAllOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAllOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAllOrdersQueryIsNotConstructed)
}

// GetAllOrdersQueryResponse is one order row as exposed to monitoring.
// Pointer fields are nil until assignment fills them in.
type GetAllOrdersQueryResponse struct {
	ID               string
	CreatedAt        *time.Time
	Lat              float64
	Lng              float64
	ItemCount        int
	Status           string
	PartnerID        *int
	EtaMinutes       *int
	ReturnEtaMinutes *int
	DeliverBy        *time.Time
	ReturnBy         *time.Time
}

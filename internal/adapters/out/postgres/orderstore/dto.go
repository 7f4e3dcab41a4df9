// Package orderstore provides the GORM-backed implementation of the order
// store, handling the conversion between the order aggregate and its
// relational representation.
package orderstore

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order
// aggregates. RowNum records arrival order, which is the tie-breaker for
// dispatch when creation timestamps are equal or missing.
type OrderDTO struct {
	ID               string     `gorm:"primaryKey"`
	RowNum           int64      `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt        *time.Time `gorm:"autoCreateTime:false"`
	Lat              float64
	Lng              float64
	ItemCount        int
	Status           string `gorm:"index"`
	PartnerID        *int
	EtaMinutes       *int
	ReturnEtaMinutes *int
	DeliverBy        *time.Time
	ReturnBy         *time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
// RowNum is left zero so the database assigns it on insert.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:               aggregate.ID(),
		CreatedAt:        aggregate.CreatedAt(),
		Lat:              aggregate.Location().Lat(),
		Lng:              aggregate.Location().Lng(),
		ItemCount:        aggregate.ItemCount(),
		Status:           aggregate.Status().String(),
		PartnerID:        aggregate.PartnerID(),
		EtaMinutes:       aggregate.ETAMinutes(),
		ReturnEtaMinutes: aggregate.ReturnETAMinutes(),
		DeliverBy:        aggregate.DeliverBy(),
		ReturnBy:         aggregate.ReturnBy(),
	}
}

// toDomain converts a database row to an order aggregate using
// RestoreOrder, which enforces aggregate invariants on the stored data.
func toDomain(dto OrderDTO) (*order.Order, error) {
	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		dto.ID,
		dto.CreatedAt,
		location,
		dto.ItemCount,
		status,
		dto.PartnerID,
		dto.EtaMinutes,
		dto.ReturnEtaMinutes,
		dto.DeliverBy,
		dto.ReturnBy,
	)
}

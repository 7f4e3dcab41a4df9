package orderstore

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderStore implements ports.OrderStore using GORM.
type GormOrderStore struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates touched
// within a unit of work.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

// NewGormOrderStore creates a new GORM order store.
func NewGormOrderStore(db *gorm.DB, tracker aggregateTracker) *GormOrderStore {
	return &GormOrderStore{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database. Inserting an identifier that is
// already taken returns an error matching errs.ErrObjectAlreadyExists;
// this relies on gorm.Config.TranslateError being enabled on the session.
func (s *GormOrderStore) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := s.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("order", aggregate.ID(), err)
		}
		return err
	}

	s.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database.
func (s *GormOrderStore) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := s.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Omit("row_num").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (s *GormOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	if id == "" {
		return nil, errs.NewValueIsRequiredError("orderID")
	}

	var dto OrderDTO
	if err := s.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every order in arrival order. Rows that cannot be
// restored into a valid aggregate are skipped; one corrupt row written by
// an external order source must not stall the dispatch cycle.
func (s *GormOrderStore) GetAll(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := s.db.WithContext(ctx).Order("row_num").Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			continue
		}
		orders = append(orders, o)
	}

	return orders, nil
}

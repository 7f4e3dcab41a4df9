package cmd

import (
	"dispatch/internal/adapters/out/ors"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/partner"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use case handlers
// together. Everything that can fail is constructed once here, so main
// gets a single error path at startup.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	depot         kernel.GeoPoint
	pool          *partner.Pool
	planner       services.BatchPlanner
	routingClient ports.RoutingClient

	assignBatchHandler commands.AssignBatchCommandHandler
}

// NewCompositionRoot assembles the application object graph from config.
func NewCompositionRoot(config Config, gormDB *gorm.DB) (*CompositionRoot, error) {
	depot, err := kernel.NewGeoPoint(config.DepotLat, config.DepotLng)
	if err != nil {
		return nil, err
	}

	pool, err := partner.NewPool(config.PartnerPoolSize, depot)
	if err != nil {
		return nil, err
	}

	planner, err := services.NewBatchPlanner(config.ClusterRadiusMeters)
	if err != nil {
		return nil, err
	}

	routingClient, err := ors.NewClient(config.ORSAPIKey, config.ORSBaseURL)
	if err != nil {
		return nil, err
	}

	root := &CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		depot:         depot,
		pool:          pool,
		planner:       planner,
		routingClient: routingClient,
	}

	root.assignBatchHandler, err = commands.NewAssignBatchCommandHandler(
		root.orderUoWFactory(),
		pool,
		planner,
		routingClient,
		depot,
		config.ReturnEtaRatio,
	)
	if err != nil {
		return nil, err
	}

	return root, nil
}

// Depot returns the depot location.
func (c *CompositionRoot) Depot() kernel.GeoPoint {
	return c.depot
}

// PartnerPool returns the shared in-memory partner pool.
func (c *CompositionRoot) PartnerPool() *partner.Pool {
	return c.pool
}

// AssignBatchCommandHandler returns the dispatch attempt handler.
func (c *CompositionRoot) AssignBatchCommandHandler() commands.AssignBatchCommandHandler {
	return c.assignBatchHandler
}

// CreateAdvanceStatusesCommandHandler builds the status sweep handler.
func (c *CompositionRoot) CreateAdvanceStatusesCommandHandler() commands.AdvanceStatusesCommandHandler {
	return commands.NewAdvanceStatusesCommandHandler(c.orderUoWFactory())
}

// CreateCreateOrderCommandHandler builds the order intake handler.
func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
}

// CreateGetAllOrdersQueryHandler builds the order listing query handler.
func (c *CompositionRoot) CreateGetAllOrdersQueryHandler() queries.GetAllOrdersQueryHandler {
	return queries.NewGetAllOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

// FuncOrderUoWFactory adapts a closure to the OrderUoWFactory interface.
type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

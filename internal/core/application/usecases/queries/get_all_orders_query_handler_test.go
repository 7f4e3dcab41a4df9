package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderstore"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type nopTracker struct{}

func (nopTracker) TrackAggregate(string, any) {}

type GetAllOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetAllOrdersQueryHandler
	store     *orderstore.GormOrderStore
}

func (suite *GetAllOrdersQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderstore.OrderDTO{}))

	suite.handler = queries.NewGetAllOrdersQueryHandler(db)
	suite.store = orderstore.NewGormOrderStore(db, nopTracker{})
}

func (suite *GetAllOrdersQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
}

func (suite *GetAllOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetAllOrdersQueryHandlerTestSuite) addOrder(id string) *order.Order {
	location, err := kernel.NewGeoPoint(12.9093, 77.6483)
	suite.Require().NoError(err)

	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	o, err := order.NewOrder(id, &createdAt, location, 2)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.store.Add(context.Background(), o))
	return o
}

func (suite *GetAllOrdersQueryHandlerTestSuite) TestHandle_EmptyTable() {
	orders, err := suite.handler.Handle(context.Background(), queries.NewGetAllOrdersQuery())

	suite.Require().NoError(err)
	suite.Empty(orders)
}

func (suite *GetAllOrdersQueryHandlerTestSuite) TestHandle_ReturnsRowsInArrivalOrder() {
	suite.addOrder("ORD-2")
	suite.addOrder("ORD-1")

	orders, err := suite.handler.Handle(context.Background(), queries.NewGetAllOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal("ORD-2", orders[0].ID)
	suite.Equal("ORD-1", orders[1].ID)
	suite.Equal("unassigned", orders[0].Status)
	suite.Nil(orders[0].PartnerID)
	suite.InDelta(12.9093, orders[0].Lat, 1e-9)
	suite.InDelta(77.6483, orders[0].Lng, 1e-9)
}

func (suite *GetAllOrdersQueryHandlerTestSuite) TestHandle_ExposesAssignmentFields() {
	ctx := context.Background()
	o := suite.addOrder("ORD-1")

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.Require().NoError(o.Assign(3, 12, 10, now))
	suite.Require().NoError(suite.store.Update(ctx, o))

	orders, err := suite.handler.Handle(ctx, queries.NewGetAllOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)

	row := orders[0]
	suite.Equal("in_transit", row.Status)
	suite.Require().NotNil(row.PartnerID)
	suite.Equal(3, *row.PartnerID)
	suite.Require().NotNil(row.EtaMinutes)
	suite.Equal(12, *row.EtaMinutes)
	suite.Require().NotNil(row.ReturnEtaMinutes)
	suite.Equal(10, *row.ReturnEtaMinutes)
	suite.Require().NotNil(row.DeliverBy)
	suite.True(now.Add(12 * time.Minute).Equal(*row.DeliverBy))
	suite.Require().NotNil(row.ReturnBy)
	suite.True(now.Add(22 * time.Minute).Equal(*row.ReturnBy))
}

func (suite *GetAllOrdersQueryHandlerTestSuite) TestHandle_ValidationError() {
	var q queries.GetAllOrdersQuery // not constructed properly

	_, err := suite.handler.Handle(context.Background(), q)
	suite.Require().ErrorIs(err, queries.ErrGetAllOrdersQueryIsNotConstructed)
}

func TestGetAllOrdersQueryHandlerTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(GetAllOrdersQueryHandlerTestSuite))
}

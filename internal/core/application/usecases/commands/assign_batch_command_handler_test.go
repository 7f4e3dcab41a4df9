package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/partner"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDispatchOrderStore struct{ mock.Mock }

func (m *MockDispatchOrderStore) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockDispatchOrderStore) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockDispatchOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockDispatchOrderStore) GetAll(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockDispatchUoW struct{ mock.Mock }

func (m *MockDispatchUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDispatchUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDispatchUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDispatchUoW) OrderStore() ports.OrderStore {
	args := m.Called()
	return args.Get(0).(ports.OrderStore)
}

type MockDispatchUoWFactory struct{ mock.Mock }

func (m *MockDispatchUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockRoutingClient struct{ mock.Mock }

func (m *MockRoutingClient) Route(ctx context.Context, stops []kernel.GeoPoint) (time.Duration, error) {
	args := m.Called(ctx, stops)
	return args.Get(0).(time.Duration), args.Error(1)
}

var dispatchNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testDepot(t *testing.T) kernel.GeoPoint {
	t.Helper()
	depot, err := kernel.NewGeoPoint(12.9093, 77.6483)
	require.NoError(t, err)
	return depot
}

func assertSameGeoPoint(t *testing.T, expected, actual kernel.GeoPoint) {
	t.Helper()
	equal, err := expected.IsEqual(actual)
	require.NoError(t, err)
	assert.True(t, equal)
}

// pendingOrder builds an unassigned order offset north of the depot by
// the given surface distance in meters.
func pendingOrder(t *testing.T, id string, northMeters float64, createdAt time.Time) *order.Order {
	t.Helper()

	depot := testDepot(t)
	loc, err := kernel.NewGeoPoint(depot.Lat()+northMeters/111000.0, depot.Lng())
	require.NoError(t, err)

	o, err := order.NewOrder(id, &createdAt, loc, 2)
	require.NoError(t, err)
	return o
}

func newAssignHandler(
	t *testing.T, factory commands.OrderUoWFactory, pool commands.PartnerPool, routing ports.RoutingClient,
) commands.AssignBatchCommandHandler {
	t.Helper()

	planner, err := services.NewBatchPlanner(300)
	require.NoError(t, err)

	handler, err := commands.NewAssignBatchCommandHandler(
		factory, pool, planner, routing, testDepot(t), 0.8)
	require.NoError(t, err)
	return handler
}

func TestAssignBatchCommandHandler_Handle_BatchOfTwo(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewAssignBatchCommand(dispatchNow)
	require.NoError(t, err)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 150, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(3, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(12*time.Minute, nil).Once(),
		store.On("Update", ctx, first).Return(nil).Once(),
		store.On("Update", ctx, second).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)

	// Both orders went to partner 1 with eta 12 and return eta 10.
	for _, o := range []*order.Order{first, second} {
		assert.Equal(t, order.InTransit, o.Status())
		require.NotNil(t, o.PartnerID())
		assert.Equal(t, 1, *o.PartnerID())
		require.NotNil(t, o.ETAMinutes())
		assert.Equal(t, 12, *o.ETAMinutes())
		require.NotNil(t, o.ReturnETAMinutes())
		assert.Equal(t, 10, *o.ReturnETAMinutes())
	}

	// The partner is busy until eta plus return eta from now.
	views := pool.Snapshot()
	assert.False(t, views[0].Available)
	require.NotNil(t, views[0].FreeAt)
	assert.Equal(t, dispatchNow.Add(22*time.Minute), *views[0].FreeAt)

	// The route visits depot, both drop-offs, depot.
	routeCall := routing.Calls[0]
	stops := routeCall.Arguments[1].([]kernel.GeoPoint)
	require.Len(t, stops, 4)
	assertSameGeoPoint(t, testDepot(t), stops[0])
	assertSameGeoPoint(t, first.Location(), stops[1])
	assertSameGeoPoint(t, second.Location(), stops[2])
	assertSameGeoPoint(t, testDepot(t), stops[3])

	store.AssertExpectations(t)
	uow.AssertExpectations(t)
	routing.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestAssignBatchCommandHandler_Handle_DistantOrdersGoAlone(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 500, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(3, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(10*time.Minute, nil).Once(),
		store.On("Update", ctx, first).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.InTransit, first.Status())
	assert.Equal(t, order.Unassigned, second.Status())
	store.AssertExpectations(t)
}

func TestAssignBatchCommandHandler_Handle_OldestFirstRegardlessOfRowOrder(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	// Stored newest first; the handler must still dispatch the oldest.
	newest := pendingOrder(t, "ORD-NEW", 0, dispatchNow.Add(-time.Minute))
	oldest := pendingOrder(t, "ORD-OLD", 500, dispatchNow.Add(-10*time.Minute))

	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{newest, oldest}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(10*time.Minute, nil).Once(),
		store.On("Update", ctx, oldest).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.InTransit, oldest.Status())
	assert.Equal(t, order.Unassigned, newest.Status())
}

func TestAssignBatchCommandHandler_Handle_NoPendingOrders(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	delivered := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-time.Hour))
	require.NoError(t, delivered.Assign(1, 10, 8, dispatchNow.Add(-time.Hour)))
	require.NoError(t, delivered.Deliver())

	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{delivered}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, new(MockRoutingClient))
	err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrNoPendingOrders)

	// No partner was touched.
	for _, v := range pool.Snapshot() {
		assert.True(t, v.Available)
	}
}

func TestAssignBatchCommandHandler_Handle_SingleOrderWaits(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	lone := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-time.Minute))
	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{lone}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, new(MockRoutingClient))
	err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrAwaitingSecondOrder)
	assert.Equal(t, order.Unassigned, lone.Status())
}

func TestAssignBatchCommandHandler_Handle_NoPartnerAvailable(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 150, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(1, testDepot(t))
	busy, _ := pool.ReconcileAndSelect(dispatchNow)
	require.NoError(t, pool.MarkBusy(busy.ID(), dispatchNow.Add(time.Hour)))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, new(MockRoutingClient))
	err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, partner.ErrNoPartnerAvailable)
	assert.Equal(t, order.Unassigned, first.Status())
}

func TestAssignBatchCommandHandler_Handle_RoutingFailureReleasesPartner(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 150, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(time.Duration(0), ports.ErrRoutingUnavailable).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, ports.ErrRoutingUnavailable)

	// The attempt left nothing behind: orders pending, partner free.
	assert.Equal(t, order.Unassigned, first.Status())
	assert.Equal(t, order.Unassigned, second.Status())

	retry, selectErr := pool.ReconcileAndSelect(dispatchNow)
	require.NoError(t, selectErr)
	assert.Equal(t, 1, retry.ID())
}

func TestAssignBatchCommandHandler_Handle_UpdateErrorReleasesPartner(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 150, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(10*time.Minute, nil).Once(),
		store.On("Update", ctx, first).Return(errors.New("update error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "update error")

	_, selectErr := pool.ReconcileAndSelect(dispatchNow)
	require.NoError(t, selectErr)
}

func TestAssignBatchCommandHandler_Handle_CommitErrorReleasesPartner(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAssignBatchCommand(dispatchNow)

	first := pendingOrder(t, "ORD-1", 0, dispatchNow.Add(-2*time.Minute))
	second := pendingOrder(t, "ORD-2", 150, dispatchNow.Add(-time.Minute))

	pool, _ := partner.NewPool(1, testDepot(t))

	store := new(MockDispatchOrderStore)
	uow := new(MockDispatchUoW)
	routing := new(MockRoutingClient)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderStore").Return(store).Once(),
		store.On("GetAll", ctx).Return([]*order.Order{first, second}, nil).Once(),
		routing.On("Route", ctx, mock.AnythingOfType("[]kernel.GeoPoint")).
			Return(10*time.Minute, nil).Once(),
		store.On("Update", ctx, first).Return(nil).Once(),
		store.On("Update", ctx, second).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockDispatchUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newAssignHandler(t, factory, pool, routing)
	err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "commit error")

	_, selectErr := pool.ReconcileAndSelect(dispatchNow)
	require.NoError(t, selectErr)
}

func TestAssignBatchCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.AssignBatchCommand{} // not constructed properly

	factory := new(MockDispatchUoWFactory)
	pool, _ := partner.NewPool(1, testDepot(t))

	handler := newAssignHandler(t, factory, pool, new(MockRoutingClient))
	err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrAssignBatchCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestNewAssignBatchCommandHandler_InvalidConfig(t *testing.T) {
	planner, _ := services.NewBatchPlanner(300)
	pool, _ := partner.NewPool(1, testDepot(t))
	factory := new(MockDispatchUoWFactory)
	routing := new(MockRoutingClient)

	var zeroDepot kernel.GeoPoint
	_, err := commands.NewAssignBatchCommandHandler(factory, pool, planner, routing, zeroDepot, 0.8)
	require.Error(t, err)

	_, err = commands.NewAssignBatchCommandHandler(factory, pool, planner, routing, testDepot(t), 0)
	require.Error(t, err)

	_, err = commands.NewAssignBatchCommandHandler(factory, pool, planner, routing, testDepot(t), 1.5)
	require.Error(t, err)
}

package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/inventory"
	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/platform"
	"github.com/marketsync/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPlatformRef(ctx context.Context, orgID uuid.UUID, platformType platform.Type, platformOrderID string) (*order.Order, error) {
	args := m.Called(ctx, orgID, platformType, platformOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter order.OrderFilter) ([]order.Order, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter order.OrderFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) StatsForOrg(ctx context.Context, orgID uuid.UUID, since *time.Time) (*order.Stats, error) {
	args := m.Called(ctx, orgID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Stats), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of inventory.InventoryItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) FindBySKUForOrg(ctx context.Context, orgID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	args := m.Called(ctx, orgID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) FindByProductForOrg(ctx context.Context, orgID, productID uuid.UUID) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, orgID, productID)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.InventoryFilter) ([]inventory.InventoryItem, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]inventory.InventoryItem), args.Error(1)
}

func (m *MockItemRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.InventoryFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) StatsForOrg(ctx context.Context, orgID uuid.UUID) (*inventory.Stats, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stats), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of inventory.StockMovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.MovementFilter) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockMovementRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter inventory.MovementFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockConnectionRepository is a mock implementation of platform.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*platform.Connection, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType platform.Type) (*platform.Connection, error) {
	args := m.Called(ctx, orgID, platformType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) ([]platform.Connection, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter platform.ConnectionFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionRepository) FindAutoSyncDue(ctx context.Context) ([]platform.Connection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]platform.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *platform.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) SaveWithLock(ctx context.Context, conn *platform.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	args := m.Called(ctx, orgID, id)
	return args.Error(0)
}

// MockListingRepository is a mock implementation of platform.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByPlatformForOrg(ctx context.Context, orgID uuid.UUID, platformType platform.Type) ([]platform.Listing, error) {
	args := m.Called(ctx, orgID, platformType)
	return args.Get(0).([]platform.Listing), args.Error(1)
}

func (m *MockListingRepository) Upsert(ctx context.Context, listing *platform.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

// MockClient is a mock implementation of platform.Client
type MockClient struct {
	mock.Mock
	platformType platform.Type
}

func (m *MockClient) Type() platform.Type {
	return m.platformType
}

func (m *MockClient) TestConnection(ctx context.Context, creds platform.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockClient) RefreshToken(ctx context.Context, creds platform.Credentials) (*platform.TokenRefresh, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.TokenRefresh), args.Error(1)
}

func (m *MockClient) PushInventory(ctx context.Context, creds platform.Credentials, updates []platform.InventoryUpdate) (*platform.PushResult, error) {
	args := m.Called(ctx, creds, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.PushResult), args.Error(1)
}

func (m *MockClient) PullOrders(ctx context.Context, creds platform.Credentials, window platform.OrderWindow) ([]platform.RemoteOrder, error) {
	args := m.Called(ctx, creds, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]platform.RemoteOrder), args.Error(1)
}

func (m *MockClient) GetOrder(ctx context.Context, creds platform.Credentials, platformOrderID string) (*platform.RemoteOrder, error) {
	args := m.Called(ctx, creds, platformOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.RemoteOrder), args.Error(1)
}

func (m *MockClient) UpdateOrderStatus(ctx context.Context, creds platform.Credentials, platformOrderID, status string) error {
	args := m.Called(ctx, creds, platformOrderID, status)
	return args.Error(0)
}

func (m *MockClient) PushProduct(ctx context.Context, creds platform.Credentials, product platform.ProductPush) error {
	args := m.Called(ctx, creds, product)
	return args.Error(0)
}

// stubRegistry resolves a single mocked client
type stubRegistry struct {
	client *MockClient
}

func (r *stubRegistry) Get(platformType platform.Type) (platform.Client, error) {
	if r.client != nil && r.client.platformType == platformType {
		return r.client, nil
	}
	return nil, platform.ErrPlatformNotSupported
}

func (r *stubRegistry) List() []platform.Client {
	if r.client == nil {
		return nil
	}
	return []platform.Client{r.client}
}

type serviceMocks struct {
	orderRepo    *MockOrderRepository
	itemRepo     *MockItemRepository
	movementRepo *MockMovementRepository
	connRepo     *MockConnectionRepository
	listingRepo  *MockListingRepository
	client       *MockClient
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		orderRepo:    new(MockOrderRepository),
		itemRepo:     new(MockItemRepository),
		movementRepo: new(MockMovementRepository),
		connRepo:     new(MockConnectionRepository),
		listingRepo:  new(MockListingRepository),
		client:       &MockClient{platformType: platform.TypeShopee},
	}
	service := NewService(m.orderRepo, m.itemRepo, m.movementRepo, m.connRepo, m.listingRepo, &stubRegistry{client: m.client}, zap.NewNop())
	return service, m
}

func newTestOrgID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestOrder(t *testing.T, orgID uuid.UUID, status order.Status) *order.Order {
	t.Helper()
	o, err := order.NewOrder(orgID, platform.TypeShopee, "PO-100", "SO-100", time.Now())
	require.NoError(t, err)
	require.NoError(t, o.AddItem("SKU-1", "Thermal Mug", "", "item-1", 2, decimal.NewFromInt(100), nil))
	switch status {
	case order.StatusPending:
		o.RecordLineReservation(0, 2)
	case order.StatusConfirmed:
		require.NoError(t, o.Confirm(nil))
		o.RecordLineReservation(0, 2)
	case order.StatusShipped:
		require.NoError(t, o.Confirm(nil))
		require.NoError(t, o.Ship("TW123", "BlackCat", nil))
	case order.StatusDelivered:
		require.NoError(t, o.Confirm(nil))
		require.NoError(t, o.Ship("TW123", "BlackCat", nil))
		require.NoError(t, o.Deliver(nil))
	}
	o.ClearDomainEvents()
	return o
}

func newTestItem(t *testing.T, orgID uuid.UUID, sku string, stock, reserved int64) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem(orgID, uuid.New(), sku)
	require.NoError(t, err)
	if stock > 0 {
		_, err = item.Adjust(stock, inventory.ChangeTypeRestock, inventory.ManualRef(), "seed", nil)
		require.NoError(t, err)
	}
	if reserved > 0 {
		require.NoError(t, item.Reserve(reserved, nil))
	}
	item.ClearDomainEvents()
	return item
}

func remoteOrderFixture(id string, status string) platform.RemoteOrder {
	return platform.RemoteOrder{
		PlatformOrderID: id,
		OrderNumber:     "SO-" + id,
		Status:          status,
		PaymentStatus:   "paid",
		CustomerName:    "Chen Wei",
		Currency:        "TWD",
		Subtotal:        decimal.NewFromInt(200),
		Total:           decimal.NewFromInt(260),
		ShippingFee:     decimal.NewFromInt(60),
		Items: []platform.RemoteOrderItem{
			{PlatformItemID: "item-1", SKU: "SKU-1", Name: "Thermal Mug", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
		OrderedAt: time.Now().Add(-time.Hour),
	}
}

func TestService_Ingest_CreatesAndReserves(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	item := newTestItem(t, orgID, "SKU-1", 10, 0)

	var saved *order.Order
	m.orderRepo.On("FindByPlatformRef", ctx, orgID, platform.TypeShopee, "PO-1").Return(nil, shared.ErrNotFound)
	m.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*order.Order)
	}).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", ctx, item).Return(nil)
	m.listingRepo.On("Upsert", ctx, mock.AnythingOfType("*platform.Listing")).Return(nil)

	result, err := service.Ingest(ctx, orgID, platform.TypeShopee, remoteOrderFixture("PO-1", "pending"), nil)

	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, order.StatusPending, result.Order.Status)
	assert.Equal(t, "PO-1", result.Order.PlatformOrderID)
	assert.Equal(t, order.PaymentPaid, result.Order.PaymentStatus)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, int64(2), item.ReservedStock)
	// the saved order row records what each line actually holds
	require.NotNil(t, saved)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, int64(2), saved.Items[0].ReservedQuantity)
	m.orderRepo.AssertExpectations(t)
}

func TestService_Ingest_Idempotent(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	existing := newTestOrder(t, orgID, order.StatusPending)

	m.orderRepo.On("FindByPlatformRef", ctx, orgID, platform.TypeShopee, "PO-100").Return(existing, nil)
	m.listingRepo.On("Upsert", ctx, mock.AnythingOfType("*platform.Listing")).Return(nil)

	remote := remoteOrderFixture("PO-100", "pending")
	remote.PaymentStatus = string(existing.PaymentStatus)
	remote.Total = existing.Total

	result, err := service.Ingest(ctx, orgID, platform.TypeShopee, remote, nil)

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, existing.ID, result.Order.ID)
	m.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	m.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestService_Ingest_RefreshAdvancesStatus(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	existing := newTestOrder(t, orgID, order.StatusPending)
	item := newTestItem(t, orgID, "SKU-1", 10, 2)

	m.orderRepo.On("FindByPlatformRef", ctx, orgID, platform.TypeShopee, "PO-100").Return(existing, nil)
	m.orderRepo.On("SaveWithLock", ctx, existing).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", mock.Anything, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", mock.Anything, item).Return(nil)
	m.movementRepo.On("Append", mock.Anything, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	m.listingRepo.On("Upsert", ctx, mock.AnythingOfType("*platform.Listing")).Return(nil)

	remote := remoteOrderFixture("PO-100", "shipped")
	remote.PaymentStatus = string(existing.PaymentStatus)
	remote.Total = existing.Total

	result, err := service.Ingest(ctx, orgID, platform.TypeShopee, remote, nil)

	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, order.StatusShipped, result.Order.Status)
	// reservation consumed: total drops by the shipped quantity
	assert.Zero(t, item.ReservedStock)
	assert.Equal(t, int64(8), item.TotalStock)
}

func TestService_Ingest_ShippedOrderDeductsStock(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	item := newTestItem(t, orgID, "SKU-1", 10, 0)

	m.orderRepo.On("FindByPlatformRef", ctx, orgID, platform.TypeShopee, "PO-2").Return(nil, shared.ErrNotFound)
	m.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", ctx, item).Return(nil)
	m.movementRepo.On("Append", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
	m.listingRepo.On("Upsert", ctx, mock.AnythingOfType("*platform.Listing")).Return(nil)

	result, err := service.Ingest(ctx, orgID, platform.TypeShopee, remoteOrderFixture("PO-2", "shipped"), nil)

	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, order.StatusShipped, result.Order.Status)
	assert.Equal(t, int64(8), item.TotalStock)
	assert.Zero(t, item.ReservedStock)
	m.movementRepo.AssertExpectations(t)
}

func TestService_Ingest_UnknownStatusDefaultsToPending(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()

	m.orderRepo.On("FindByPlatformRef", ctx, orgID, platform.TypeShopee, "PO-3").Return(nil, shared.ErrNotFound)
	m.orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(nil, shared.ErrNotFound)
	m.listingRepo.On("Upsert", ctx, mock.AnythingOfType("*platform.Listing")).Return(nil)

	result, err := service.Ingest(ctx, orgID, platform.TypeShopee, remoteOrderFixture("PO-3", "weird_status"), nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, result.Order.Status)
}

func TestService_UpdateStatus_Confirm(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusPending)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{Status: order.StatusConfirmed}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, resp.Status)
	assert.NotNil(t, resp.ConfirmedAt)
}

func TestService_UpdateStatus_InvalidTransition(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusDelivered)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{Status: order.StatusConfirmed}, nil)

	require.Error(t, err)
	assert.Nil(t, resp)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	m.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_CancelReleasesReservation(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusConfirmed)
	item := newTestItem(t, orgID, "SKU-1", 10, 2)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", ctx, item).Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{
		Status:       order.StatusCancelled,
		CancelReason: "buyer request",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, resp.Status)
	assert.Equal(t, "buyer request", resp.CancelReason)
	assert.Zero(t, item.ReservedStock)
	assert.Equal(t, int64(10), item.TotalStock)
}

func TestService_UpdateStatus_CancelWithoutHeldStockLeavesInventoryAlone(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	// order whose reservation attempt failed at ingest: no line holds stock
	o := newTestOrder(t, orgID, order.StatusConfirmed)
	o.ClearLineReservation(0)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{
		Status:       order.StatusCancelled,
		CancelReason: "oversold",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, resp.Status)
	// another order's reservation must never be given back on this cancel
	m.itemRepo.AssertNotCalled(t, "FindBySKUForOrg", mock.Anything, mock.Anything, mock.Anything)
	m.itemRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestService_UpdateStatus_CancelReleasesOnlyRecordedQuantity(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	// partial hold: only 1 of the 2 ordered units was reserved at ingest
	o := newTestOrder(t, orgID, order.StatusConfirmed)
	o.RecordLineReservation(0, 1)
	item := newTestItem(t, orgID, "SKU-1", 10, 1)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", ctx, item).Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{
		Status:       order.StatusCancelled,
		CancelReason: "buyer request",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, resp.Status)
	assert.Zero(t, item.ReservedStock)
	assert.Equal(t, int64(10), item.TotalStock)
	assert.False(t, o.HasReservedStock())
}

func TestService_UpdateStatus_ShipConsumesReservation(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusConfirmed)
	item := newTestItem(t, orgID, "SKU-1", 10, 2)

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)
	m.itemRepo.On("FindBySKUForOrg", ctx, orgID, "SKU-1").Return(item, nil)
	m.itemRepo.On("SaveWithLock", ctx, item).Return(nil)
	m.movementRepo.On("Append", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{
		Status:         order.StatusShipped,
		TrackingNumber: "TW555",
		Carrier:        "7-11",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, resp.Status)
	assert.Equal(t, "TW555", resp.TrackingNumber)
	assert.Zero(t, item.ReservedStock)
	assert.Equal(t, int64(8), item.TotalStock)
	m.movementRepo.AssertExpectations(t)
}

func TestService_UpdateStatus_PushToPlatform(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusShipped)
	conn, err := platform.NewConnection(orgID, platform.TypeShopee, "Test Shop",
		platform.Credentials{"api_key": "k", "api_secret": "s"}, platform.DefaultSyncSettings(), nil)
	require.NoError(t, err)
	conn.ClearDomainEvents()

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)
	m.connRepo.On("FindByPlatformForOrg", ctx, orgID, platform.TypeShopee).Return(conn, nil)
	m.client.On("UpdateOrderStatus", ctx, conn.Credentials, "PO-100", "delivered").Return(nil)

	resp, err := service.UpdateStatus(ctx, orgID, o.ID, UpdateStatusRequest{
		Status:         order.StatusDelivered,
		PushToPlatform: true,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, resp.Status)
	m.client.AssertExpectations(t)
}

func TestService_AddNote(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusPending)
	actorID := uuid.New()

	m.orderRepo.On("FindByIDForOrg", ctx, orgID, o.ID).Return(o, nil)
	m.orderRepo.On("SaveWithLock", ctx, o).Return(nil)

	resp, err := service.AddNote(ctx, orgID, o.ID, AddNoteRequest{Text: "call buyer before shipping"}, &actorID)

	require.NoError(t, err)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "call buyer before shipping", resp.Notes[0].Text)
	assert.Equal(t, &actorID, resp.Notes[0].AuthorID)
}

func TestService_Stats(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()

	stats := &order.Stats{
		TotalOrders: 5,
		ByStatus:    map[order.Status]int64{order.StatusPending: 2, order.StatusShipped: 3},
		ByPlatform:  map[platform.Type]int64{platform.TypeShopee: 5},
		Revenue:     decimal.NewFromInt(1300),
	}
	m.orderRepo.On("StatsForOrg", ctx, orgID, (*time.Time)(nil)).Return(stats, nil)

	resp, err := service.Stats(ctx, orgID, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.TotalOrders)
	assert.Equal(t, int64(2), resp.ByStatus["pending"])
	assert.Equal(t, int64(5), resp.ByPlatform["shopee"])
	assert.True(t, decimal.NewFromInt(1300).Equal(resp.Revenue))
}

func TestService_List(t *testing.T) {
	service, m := newTestService()
	ctx := context.Background()
	orgID := newTestOrgID()
	o := newTestOrder(t, orgID, order.StatusPending)

	m.orderRepo.On("FindAllForOrg", ctx, orgID, mock.AnythingOfType("order.OrderFilter")).
		Return([]order.Order{*o}, nil)
	m.orderRepo.On("CountForOrg", ctx, orgID, mock.AnythingOfType("order.OrderFilter")).
		Return(int64(1), nil)

	result, err := service.List(ctx, orgID, OrderListFilter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, "PO-100", result.Items[0].PlatformOrderID)
}

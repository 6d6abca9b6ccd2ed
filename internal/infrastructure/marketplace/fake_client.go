package marketplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketsync/backend/internal/domain/platform"
)

// FakeClient is an in-memory marketplace adapter for tests and local
// development. Behavior is scripted through the error fields; calls are
// recorded so tests can assert on them.
type FakeClient struct {
	mu sync.Mutex

	PlatformType platform.Type

	TestConnectionErr error
	RefreshTokenErr   error
	PushInventoryErr  error
	PullOrdersErr     error
	GetOrderErr       error
	UpdateStatusErr   error
	PushProductErr    error

	// RemoteOrders is returned by PullOrders and searched by GetOrder
	RemoteOrders []platform.RemoteOrder
	// PushFailures marks SKUs that PushInventory reports as failed
	PushFailures map[string]string
	// RefreshedCredentials is returned by RefreshToken when set
	RefreshedCredentials platform.Credentials

	TestConnectionCalls int
	RefreshTokenCalls   int
	PushedInventory     [][]platform.InventoryUpdate
	PulledWindows       []platform.OrderWindow
	StatusUpdates       map[string]string
	PushedProducts      []platform.ProductPush
}

// NewFakeClient creates a fake client for a platform
func NewFakeClient(platformType platform.Type) *FakeClient {
	return &FakeClient{
		PlatformType:  platformType,
		StatusUpdates: make(map[string]string),
	}
}

func (f *FakeClient) Type() platform.Type {
	return f.PlatformType
}

func (f *FakeClient) TestConnection(ctx context.Context, creds platform.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TestConnectionCalls++
	return f.TestConnectionErr
}

func (f *FakeClient) RefreshToken(ctx context.Context, creds platform.Credentials) (*platform.TokenRefresh, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshTokenCalls++
	if f.RefreshTokenErr != nil {
		return nil, f.RefreshTokenErr
	}
	refreshed := f.RefreshedCredentials
	if refreshed == nil {
		refreshed = creds
	}
	return &platform.TokenRefresh{Credentials: refreshed}, nil
}

func (f *FakeClient) PushInventory(ctx context.Context, creds platform.Credentials, updates []platform.InventoryUpdate) (*platform.PushResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PushedInventory = append(f.PushedInventory, updates)
	if f.PushInventoryErr != nil {
		return nil, f.PushInventoryErr
	}
	result := &platform.PushResult{TotalCount: len(updates)}
	for _, update := range updates {
		if reason, ok := f.PushFailures[update.SKU]; ok {
			result.AddFailure(update.SKU, reason)
		} else {
			result.SuccessCount++
		}
	}
	return result, nil
}

func (f *FakeClient) PullOrders(ctx context.Context, creds platform.Credentials, window platform.OrderWindow) ([]platform.RemoteOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PulledWindows = append(f.PulledWindows, window)
	if f.PullOrdersErr != nil {
		return nil, f.PullOrdersErr
	}
	orders := make([]platform.RemoteOrder, len(f.RemoteOrders))
	copy(orders, f.RemoteOrders)
	return orders, nil
}

func (f *FakeClient) GetOrder(ctx context.Context, creds platform.Credentials, platformOrderID string) (*platform.RemoteOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetOrderErr != nil {
		return nil, f.GetOrderErr
	}
	for i := range f.RemoteOrders {
		if f.RemoteOrders[i].PlatformOrderID == platformOrderID {
			order := f.RemoteOrders[i]
			return &order, nil
		}
	}
	return nil, fmt.Errorf("%s: order %s not found", f.PlatformType, platformOrderID)
}

func (f *FakeClient) UpdateOrderStatus(ctx context.Context, creds platform.Credentials, platformOrderID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateStatusErr != nil {
		return f.UpdateStatusErr
	}
	f.StatusUpdates[platformOrderID] = status
	return nil
}

func (f *FakeClient) PushProduct(ctx context.Context, creds platform.Credentials, product platform.ProductPush) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PushedProducts = append(f.PushedProducts, product)
	return f.PushProductErr
}

// Ensure FakeClient implements the Client port
var _ platform.Client = (*FakeClient)(nil)

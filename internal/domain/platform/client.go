package platform

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by clients and the registry
var (
	ErrPlatformNotSupported = errors.New("platform: platform not supported")
	ErrNotConfigured        = errors.New("platform: connection not configured")
	ErrRateLimited          = errors.New("platform: rate limit exceeded")
	ErrTokenExpired         = errors.New("platform: access token expired")
)

// InventoryUpdate is one SKU-level stock push to a platform
type InventoryUpdate struct {
	SKU               string `json:"sku"`
	PlatformProductID string `json:"platform_product_id"`
	Quantity          int64  `json:"quantity"`
}

// PushFailure records one failed unit of work during a push
type PushFailure struct {
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

// PushResult summarizes a batch push to a single platform
type PushResult struct {
	TotalCount   int           `json:"total_count"`
	SuccessCount int           `json:"success_count"`
	FailedCount  int           `json:"failed_count"`
	Failures     []PushFailure `json:"failures,omitempty"`
}

// AddFailure records a failed item in the result
func (r *PushResult) AddFailure(sku, reason string) {
	r.FailedCount++
	r.Failures = append(r.Failures, PushFailure{SKU: sku, Reason: reason})
}

// RemoteOrderItem is one line of an order as reported by a platform
type RemoteOrderItem struct {
	PlatformItemID string          `json:"platform_item_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	VariantName    string          `json:"variant_name,omitempty"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// RemoteAddress is the shipping address as reported by a platform
type RemoteAddress struct {
	Recipient  string `json:"recipient"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// RemoteOrder is an order payload pulled from a platform
type RemoteOrder struct {
	PlatformOrderID string          `json:"platform_order_id"`
	OrderNumber     string          `json:"order_number"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ShippingAddress RemoteAddress   `json:"shipping_address"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Items           []RemoteOrderItem `json:"items"`
	OrderedAt       time.Time       `json:"ordered_at"`
}

// OrderWindow bounds an order pull
type OrderWindow struct {
	Since time.Time
	Until time.Time
}

// DefaultOrderWindow returns the last seven days ending now
func DefaultOrderWindow(now time.Time) OrderWindow {
	return OrderWindow{Since: now.AddDate(0, 0, -7), Until: now}
}

// ProductPush is a product listing push to a platform
type ProductPush struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	ImageURLs   []string        `json:"image_urls,omitempty"`
}

// TokenRefresh is the outcome of a credential refresh exchange
type TokenRefresh struct {
	Credentials Credentials
	ExpiresAt   *time.Time
}

// Client is the port every marketplace adapter implements. Implementations
// are stateless with respect to connections: credentials are passed per call.
type Client interface {
	// Type returns the platform this client talks to
	Type() Type

	// TestConnection verifies the credentials against the platform API
	TestConnection(ctx context.Context, creds Credentials) error

	// RefreshToken exchanges the current credentials for fresh ones
	RefreshToken(ctx context.Context, creds Credentials) (*TokenRefresh, error)

	// PushInventory updates stock levels on the platform
	PushInventory(ctx context.Context, creds Credentials, updates []InventoryUpdate) (*PushResult, error)

	// PullOrders fetches orders created or updated inside the window
	PullOrders(ctx context.Context, creds Credentials, window OrderWindow) ([]RemoteOrder, error)

	// GetOrder fetches a single order by its platform ID
	GetOrder(ctx context.Context, creds Credentials, platformOrderID string) (*RemoteOrder, error)

	// UpdateOrderStatus reflects a local status change back to the platform
	UpdateOrderStatus(ctx context.Context, creds Credentials, platformOrderID, status string) error

	// PushProduct creates or updates a product listing on the platform
	PushProduct(ctx context.Context, creds Credentials, product ProductPush) error
}

// ClientRegistry resolves clients by platform type
type ClientRegistry interface {
	// Get returns the client for a platform, or ErrPlatformNotSupported
	Get(platformType Type) (Client, error)

	// List returns all registered clients
	List() []Client
}

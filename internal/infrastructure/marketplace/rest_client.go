package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/marketsync/backend/internal/domain/platform"
)

// restOrderPageSize is the page size for generic REST order pulls
const restOrderPageSize = 50

// RESTClient is a generic bearer-token marketplace adapter. Momo, Shopline,
// PChome and Yahoo expose partner APIs with the same shape: JSON over HTTPS,
// an access token header, and paged order feeds. One implementation covers
// all four, parameterized by platform type and base URL.
type RESTClient struct {
	platformType platform.Type
	baseURL      string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// NewRESTClient creates a generic REST client for a platform
func NewRESTClient(platformType platform.Type, cfg Config) *RESTClient {
	return &RESTClient{
		platformType: platformType,
		baseURL:      cfg.baseURL(platformType),
		httpClient:   &http.Client{Timeout: cfg.timeout()},
		limiter:      cfg.limiter(),
	}
}

// restEnvelope is the common response envelope
type restEnvelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type restShopResponse struct {
	restEnvelope
	Shop struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"shop"`
}

type restTokenResponse struct {
	restEnvelope
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// restStockFailure is one rejected update in a batch stock push
type restStockFailure struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

type restStockResponse struct {
	restEnvelope
	Failures []restStockFailure `json:"failures"`
}

type restOrder struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	Currency      string `json:"currency"`
	Subtotal      string `json:"subtotal"`
	ShippingFee   string `json:"shipping_fee"`
	Discount      string `json:"discount"`
	Total         string `json:"total"`
	CreatedAt     int64  `json:"created_at"`
	Customer      struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Shipping struct {
		Recipient  string `json:"recipient"`
		Address    string `json:"address"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
		Country    string `json:"country"`
		Phone      string `json:"phone"`
	} `json:"shipping"`
	Items []struct {
		ProductID string `json:"product_id"`
		SKU       string `json:"sku"`
		Name      string `json:"name"`
		Variant   string `json:"variant"`
		Quantity  int64  `json:"quantity"`
		UnitPrice string `json:"unit_price"`
	} `json:"items"`
}

type restOrderListResponse struct {
	restEnvelope
	Orders  []restOrder `json:"orders"`
	HasMore bool        `json:"has_more"`
}

type restOrderResponse struct {
	restEnvelope
	Order restOrder `json:"order"`
}

func parseRESTCreds(creds platform.Credentials) (string, error) {
	token := creds["access_token"]
	if token == "" {
		return "", platform.ErrNotConfigured
	}
	return token, nil
}

// Type returns the platform this client talks to
func (c *RESTClient) Type() platform.Type {
	return c.platformType
}

// TestConnection verifies the credentials by fetching the shop profile
func (c *RESTClient) TestConnection(ctx context.Context, creds platform.Credentials) error {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/shop", token, nil, nil)
	if err != nil {
		return err
	}

	var resp restShopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%s: parse shop response: %w", c.platformType, err)
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}
	return nil
}

// RefreshToken exchanges the refresh token for a fresh access token. When the
// connection carries no refresh token the credentials are returned unchanged.
func (c *RESTClient) RefreshToken(ctx context.Context, creds platform.Credentials) (*platform.TokenRefresh, error) {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return nil, err
	}
	refreshToken := creds["refresh_token"]
	if refreshToken == "" {
		return &platform.TokenRefresh{Credentials: creds}, nil
	}

	payload := map[string]interface{}{"refresh_token": refreshToken}
	body, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", token, nil, payload)
	if err != nil {
		return nil, err
	}

	var resp restTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: parse token response: %w", c.platformType, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}

	refreshed := platform.Credentials{}
	for k, v := range creds {
		refreshed[k] = v
	}
	refreshed["access_token"] = resp.AccessToken
	if resp.RefreshToken != "" {
		refreshed["refresh_token"] = resp.RefreshToken
	}
	var expiresAt *time.Time
	if resp.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	return &platform.TokenRefresh{Credentials: refreshed, ExpiresAt: expiresAt}, nil
}

// PushInventory updates stock levels in one batch call
func (c *RESTClient) PushInventory(ctx context.Context, creds platform.Credentials, updates []platform.InventoryUpdate) (*platform.PushResult, error) {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return nil, err
	}

	result := &platform.PushResult{TotalCount: len(updates)}
	batch := make([]map[string]interface{}, 0, len(updates))
	skuByProduct := make(map[string]string, len(updates))
	for _, update := range updates {
		if update.PlatformProductID == "" {
			result.AddFailure(update.SKU, fmt.Sprintf("no %s listing mapped for sku", c.platformType))
			continue
		}
		skuByProduct[update.PlatformProductID] = update.SKU
		batch = append(batch, map[string]interface{}{
			"product_id": update.PlatformProductID,
			"quantity":   update.Quantity,
		})
	}
	if len(batch) == 0 {
		return result, nil
	}

	body, err := c.doRequest(ctx, http.MethodPut, "/inventory/batch", token, nil, map[string]interface{}{"updates": batch})
	if err != nil {
		return nil, err
	}

	var resp restStockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: parse stock response: %w", c.platformType, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}

	failed := make(map[string]string, len(resp.Failures))
	for _, f := range resp.Failures {
		failed[f.ProductID] = f.Reason
	}
	for productID, sku := range skuByProduct {
		if reason, ok := failed[productID]; ok {
			result.AddFailure(sku, reason)
		} else {
			result.SuccessCount++
		}
	}
	return result, nil
}

// PullOrders fetches orders created inside the window, page by page
func (c *RESTClient) PullOrders(ctx context.Context, creds platform.Credentials, window platform.OrderWindow) ([]platform.RemoteOrder, error) {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return nil, err
	}

	var orders []platform.RemoteOrder
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("since", strconv.FormatInt(window.Since.Unix(), 10))
		query.Set("until", strconv.FormatInt(window.Until.Unix(), 10))
		query.Set("page", strconv.Itoa(page))
		query.Set("page_size", strconv.Itoa(restOrderPageSize))

		body, err := c.doRequest(ctx, http.MethodGet, "/orders", token, query, nil)
		if err != nil {
			return nil, err
		}

		var resp restOrderListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%s: parse order list: %w", c.platformType, err)
		}
		if !resp.Success {
			return nil, fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
		}

		for i := range resp.Orders {
			orders = append(orders, convertRESTOrder(&resp.Orders[i]))
		}
		if !resp.HasMore || len(resp.Orders) == 0 {
			break
		}
	}
	return orders, nil
}

// GetOrder fetches a single order by its platform ID
func (c *RESTClient) GetOrder(ctx context.Context, creds platform.Credentials, platformOrderID string) (*platform.RemoteOrder, error) {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/orders/"+platformOrderID, token, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp restOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: parse order: %w", c.platformType, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}

	order := convertRESTOrder(&resp.Order)
	return &order, nil
}

// UpdateOrderStatus reflects a local status change back to the platform
func (c *RESTClient) UpdateOrderStatus(ctx context.Context, creds platform.Credentials, platformOrderID, status string) error {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{"status": status}
	body, err := c.doRequest(ctx, http.MethodPut, "/orders/"+platformOrderID+"/status", token, nil, payload)
	if err != nil {
		return err
	}

	var resp restEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%s: parse status response: %w", c.platformType, err)
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}
	return nil
}

// PushProduct creates a product listing on the platform
func (c *RESTClient) PushProduct(ctx context.Context, creds platform.Credentials, product platform.ProductPush) error {
	token, err := parseRESTCreds(creds)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"sku":         product.SKU,
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price.String(),
		"stock":       product.Stock,
		"images":      product.ImageURLs,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/products", token, nil, payload)
	if err != nil {
		return err
	}

	var resp restEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%s: parse product response: %w", c.platformType, err)
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s: %s", c.platformType, resp.Code, resp.Message)
	}
	return nil
}

// doRequest performs one authenticated HTTP request
func (c *RESTClient) doRequest(ctx context.Context, method, path, token string, query url.Values, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", c.platformType, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.platformType, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.platformType, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.platformType, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, platform.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, platform.ErrTokenExpired
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s: HTTP %d", c.platformType, resp.StatusCode)
	}
	return body, nil
}

// convertRESTOrder maps a generic order payload onto the domain shape
func convertRESTOrder(o *restOrder) platform.RemoteOrder {
	order := platform.RemoteOrder{
		PlatformOrderID: o.ID,
		OrderNumber:     o.Number,
		Status:          mapRESTOrderStatus(o.Status),
		PaymentStatus:   mapRESTPaymentStatus(o.PaymentStatus),
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerPhone:   o.Customer.Phone,
		ShippingAddress: platform.RemoteAddress{
			Recipient:  o.Shipping.Recipient,
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			State:      o.Shipping.State,
			PostalCode: o.Shipping.PostalCode,
			Country:    o.Shipping.Country,
			Phone:      o.Shipping.Phone,
		},
		Currency:    o.Currency,
		Subtotal:    parseDecimal(o.Subtotal),
		ShippingFee: parseDecimal(o.ShippingFee),
		Discount:    parseDecimal(o.Discount),
		Total:       parseDecimal(o.Total),
		OrderedAt:   epochToTime(o.CreatedAt),
	}
	if order.Currency == "" {
		order.Currency = "TWD"
	}

	for _, item := range o.Items {
		order.Items = append(order.Items, platform.RemoteOrderItem{
			PlatformItemID: item.ProductID,
			SKU:            item.SKU,
			Name:           item.Name,
			VariantName:    item.Variant,
			Quantity:       item.Quantity,
			UnitPrice:      parseDecimal(item.UnitPrice),
		})
	}
	return order
}

// mapRESTOrderStatus normalizes order status values
func mapRESTOrderStatus(status string) string {
	switch status {
	case "pending", "unpaid", "created":
		return "pending"
	case "confirmed", "processing", "ready_to_ship":
		return "confirmed"
	case "shipped", "in_transit":
		return "shipped"
	case "delivered", "completed":
		return "delivered"
	case "cancelled", "refunded":
		return "cancelled"
	default:
		return "pending"
	}
}

// mapRESTPaymentStatus normalizes payment status values
func mapRESTPaymentStatus(status string) string {
	switch status {
	case "paid", "captured":
		return "paid"
	case "refunded":
		return "refunded"
	case "partial_refund", "partially_refunded":
		return "partial_refund"
	default:
		return "pending"
	}
}

// Ensure RESTClient implements the Client port
var _ platform.Client = (*RESTClient)(nil)

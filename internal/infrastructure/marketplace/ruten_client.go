package marketplace

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/marketsync/backend/internal/domain/platform"
)

// Ruten partner API paths
const (
	rutenPathShopInfo  = "/shop/info"
	rutenPathItems     = "/items"
	rutenPathOrders    = "/orders"
	rutenOrderPageSize = 50
)

// RutenClient talks to the Ruten partner API. Every request carries the
// API key and an HMAC-SHA256 signature over method + path + timestamp.
type RutenClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRutenClient creates a Ruten client from marketplace configuration
func NewRutenClient(cfg Config) *RutenClient {
	return &RutenClient{
		baseURL:    cfg.baseURL(platform.TypeRuten),
		httpClient: &http.Client{Timeout: cfg.timeout()},
		limiter:    cfg.limiter(),
	}
}

type rutenCreds struct {
	apiKey    string
	secretKey string
}

func parseRutenCreds(creds platform.Credentials) (rutenCreds, error) {
	c := rutenCreds{
		apiKey:    creds["api_key"],
		secretKey: creds["secret_key"],
	}
	if c.apiKey == "" || c.secretKey == "" {
		return rutenCreds{}, platform.ErrNotConfigured
	}
	return c, nil
}

// Type returns the platform this client talks to
func (c *RutenClient) Type() platform.Type {
	return platform.TypeRuten
}

// TestConnection verifies the credentials by fetching the shop profile
func (c *RutenClient) TestConnection(ctx context.Context, creds platform.Credentials) error {
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodGet, rutenPathShopInfo, rc, nil, nil)
	if err != nil {
		return err
	}

	var resp rutenShopInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("ruten: parse shop info: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("ruten: %s: %s", resp.ErrorCode, resp.ErrorMsg)
	}
	return nil
}

// RefreshToken is a no-op: Ruten partner keys are long lived
func (c *RutenClient) RefreshToken(ctx context.Context, creds platform.Credentials) (*platform.TokenRefresh, error) {
	if _, err := parseRutenCreds(creds); err != nil {
		return nil, err
	}
	return &platform.TokenRefresh{Credentials: creds}, nil
}

// PushInventory updates stock levels item by item
func (c *RutenClient) PushInventory(ctx context.Context, creds platform.Credentials, updates []platform.InventoryUpdate) (*platform.PushResult, error) {
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return nil, err
	}

	result := &platform.PushResult{TotalCount: len(updates)}
	for _, update := range updates {
		if update.PlatformProductID == "" {
			result.AddFailure(update.SKU, "no ruten listing mapped for sku")
			continue
		}

		path := rutenPathItems + "/" + update.PlatformProductID + "/stock"
		payload := map[string]interface{}{"quantity": update.Quantity}

		body, err := c.doRequest(ctx, http.MethodPut, path, rc, nil, payload)
		if err != nil {
			result.AddFailure(update.SKU, err.Error())
			continue
		}

		var resp rutenStockUpdateResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			result.AddFailure(update.SKU, "invalid response from ruten")
			continue
		}
		if !resp.IsSuccess() {
			result.AddFailure(update.SKU, resp.ErrorMsg)
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

// PullOrders fetches orders created inside the window, page by page
func (c *RutenClient) PullOrders(ctx context.Context, creds platform.Credentials, window platform.OrderWindow) ([]platform.RemoteOrder, error) {
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return nil, err
	}

	var orders []platform.RemoteOrder
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("created_from", strconv.FormatInt(window.Since.Unix(), 10))
		query.Set("created_to", strconv.FormatInt(window.Until.Unix(), 10))
		query.Set("page", strconv.Itoa(page))
		query.Set("page_size", strconv.Itoa(rutenOrderPageSize))

		body, err := c.doRequest(ctx, http.MethodGet, rutenPathOrders, rc, query, nil)
		if err != nil {
			return nil, err
		}

		var resp rutenOrderListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("ruten: parse order list: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("ruten: %s: %s", resp.ErrorCode, resp.ErrorMsg)
		}

		for i := range resp.Data.Orders {
			orders = append(orders, convertRutenOrder(&resp.Data.Orders[i]))
		}
		if page >= resp.Data.TotalPages || len(resp.Data.Orders) == 0 {
			break
		}
	}
	return orders, nil
}

// GetOrder fetches a single order by its platform ID
func (c *RutenClient) GetOrder(ctx context.Context, creds platform.Credentials, platformOrderID string) (*platform.RemoteOrder, error) {
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, http.MethodGet, rutenPathOrders+"/"+platformOrderID, rc, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp rutenOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ruten: parse order: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("ruten: %s: %s", resp.ErrorCode, resp.ErrorMsg)
	}

	order := convertRutenOrder(&resp.Data)
	return &order, nil
}

// UpdateOrderStatus reflects a local status change on Ruten. Only shipment
// is pushed.
func (c *RutenClient) UpdateOrderStatus(ctx context.Context, creds platform.Credentials, platformOrderID, status string) error {
	if status != "shipped" {
		return nil
	}
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodPost, rutenPathOrders+"/"+platformOrderID+"/ship", rc, nil, map[string]interface{}{})
	if err != nil {
		return err
	}

	var resp rutenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("ruten: parse ship response: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("ruten: %s: %s", resp.ErrorCode, resp.ErrorMsg)
	}
	return nil
}

// PushProduct creates a product listing on Ruten
func (c *RutenClient) PushProduct(ctx context.Context, creds platform.Credentials, product platform.ProductPush) error {
	rc, err := parseRutenCreds(creds)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"goods_no":   product.SKU,
		"goods_name": product.Name,
		"description": product.Description,
		"price":      product.Price.String(),
		"quantity":   product.Stock,
		"images":     product.ImageURLs,
	}
	body, err := c.doRequest(ctx, http.MethodPost, rutenPathItems, rc, nil, payload)
	if err != nil {
		return err
	}

	var resp rutenItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("ruten: parse item response: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("ruten: %s: %s", resp.ErrorCode, resp.ErrorMsg)
	}
	return nil
}

// doRequest performs one signed HTTP request against the Ruten API
func (c *RutenClient) doRequest(ctx context.Context, method, path string, rc rutenCreds, query url.Values, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ruten: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ruten: create request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("X-Ruten-Api-Key", rc.apiKey)
	req.Header.Set("X-Ruten-Timestamp", timestamp)
	req.Header.Set("X-Ruten-Signature", rutenSign(rc.secretKey, method, path, timestamp))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ruten: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("ruten: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, platform.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, platform.ErrTokenExpired
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("ruten: HTTP %d", resp.StatusCode)
	}
	return body, nil
}

// rutenSign computes the HMAC-SHA256 request signature
func rutenSign(secretKey, method, path, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(method + path + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// convertRutenOrder maps a Ruten order payload onto the domain shape
func convertRutenOrder(o *rutenOrder) platform.RemoteOrder {
	order := platform.RemoteOrder{
		PlatformOrderID: o.OrderID,
		OrderNumber:     o.OrderNumber,
		Status:          mapRutenOrderStatus(o.Status),
		PaymentStatus:   mapRutenPaymentStatus(o.PayStatus),
		CustomerName:    o.Buyer.Name,
		CustomerEmail:   o.Buyer.Email,
		CustomerPhone:   o.Buyer.Phone,
		ShippingAddress: platform.RemoteAddress{
			Recipient:  o.Receiver.Name,
			Address:    o.Receiver.Address,
			City:       o.Receiver.City,
			PostalCode: o.Receiver.Zipcode,
			Country:    "TW",
			Phone:      o.Receiver.Phone,
		},
		Currency:    o.Currency,
		Subtotal:    parseDecimal(o.Subtotal),
		ShippingFee: parseDecimal(o.ShippingFee),
		Discount:    parseDecimal(o.Discount),
		Total:       parseDecimal(o.Total),
		OrderedAt:   epochToTime(o.OrderedAt),
	}
	if order.Currency == "" {
		order.Currency = "TWD"
	}
	if order.Subtotal.IsZero() {
		subtotal := decimal.Zero
		for _, item := range o.Items {
			subtotal = subtotal.Add(parseDecimal(item.UnitPrice).Mul(decimal.NewFromInt(item.Quantity)))
		}
		order.Subtotal = subtotal
	}

	for _, item := range o.Items {
		order.Items = append(order.Items, platform.RemoteOrderItem{
			PlatformItemID: item.GoodsID,
			SKU:            item.GoodsNo,
			Name:           item.GoodsName,
			VariantName:    item.SpecName,
			Quantity:       item.Quantity,
			UnitPrice:      parseDecimal(item.UnitPrice),
		})
	}
	return order
}

// mapRutenOrderStatus maps Ruten order status onto the local state machine
func mapRutenOrderStatus(status string) string {
	switch status {
	case "waiting_payment":
		return "pending"
	case "processing", "waiting_shipment":
		return "confirmed"
	case "shipped", "in_transit":
		return "shipped"
	case "completed":
		return "delivered"
	case "cancelled", "returned":
		return "cancelled"
	default:
		return "pending"
	}
}

// mapRutenPaymentStatus maps Ruten payment status
func mapRutenPaymentStatus(status string) string {
	switch status {
	case "paid":
		return "paid"
	case "refunded":
		return "refunded"
	case "partial_refund":
		return "partial_refund"
	default:
		return "pending"
	}
}

// Ensure RutenClient implements the Client port
var _ platform.Client = (*RutenClient)(nil)

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
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/marketsync/backend/internal/domain/platform"
)

// Shopee Open API v2 paths
const (
	shopeePathShopInfo    = "/api/v2/shop/get_shop_info"
	shopeePathAccessToken = "/api/v2/auth/access_token/get"
	shopeePathUpdateStock = "/api/v2/product/update_stock"
	shopeePathOrderList   = "/api/v2/order/get_order_list"
	shopeePathOrderDetail = "/api/v2/order/get_order_detail"
	shopeePathShipOrder   = "/api/v2/logistics/ship_order"
	shopeePathAddItem     = "/api/v2/product/add_item"
)

// shopeeOrderPageSize is the page size for order list pulls; detail lookups
// are batched to at most 50 order SNs per Shopee's API limit.
const (
	shopeeOrderPageSize   = 100
	shopeeDetailBatchSize = 50
)

// ShopeeClient talks to the Shopee Open API v2. Requests are signed with
// HMAC-SHA256 over partner_id + path + timestamp + access_token + shop_id.
type ShopeeClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewShopeeClient creates a Shopee client from marketplace configuration
func NewShopeeClient(cfg Config) *ShopeeClient {
	return &ShopeeClient{
		baseURL:    cfg.baseURL(platform.TypeShopee),
		httpClient: &http.Client{Timeout: cfg.timeout()},
		limiter:    cfg.limiter(),
	}
}

// shopeeCreds is the parsed credential set a Shopee connection carries
type shopeeCreds struct {
	partnerID    string
	partnerKey   string
	shopID       string
	accessToken  string
	refreshToken string
}

func parseShopeeCreds(creds platform.Credentials) (shopeeCreds, error) {
	c := shopeeCreds{
		partnerID:    creds["partner_id"],
		partnerKey:   creds["partner_key"],
		shopID:       creds["shop_id"],
		accessToken:  creds["access_token"],
		refreshToken: creds["refresh_token"],
	}
	if c.partnerID == "" || c.partnerKey == "" || c.shopID == "" || c.accessToken == "" {
		return shopeeCreds{}, platform.ErrNotConfigured
	}
	return c, nil
}

// Type returns the platform this client talks to
func (c *ShopeeClient) Type() platform.Type {
	return platform.TypeShopee
}

// TestConnection verifies the credentials by fetching the shop profile
func (c *ShopeeClient) TestConnection(ctx context.Context, creds platform.Credentials) error {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return err
	}

	body, err := c.doRequest(ctx, http.MethodGet, shopeePathShopInfo, sc, nil, nil)
	if err != nil {
		return err
	}

	var resp shopeeShopInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("shopee: parse shop info: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
	}
	return nil
}

// RefreshToken exchanges the refresh token for a fresh access token
func (c *ShopeeClient) RefreshToken(ctx context.Context, creds platform.Credentials) (*platform.TokenRefresh, error) {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return nil, err
	}
	if sc.refreshToken == "" {
		return nil, platform.ErrNotConfigured
	}

	shopID, _ := strconv.ParseInt(sc.shopID, 10, 64)
	partnerID, _ := strconv.ParseInt(sc.partnerID, 10, 64)
	payload := map[string]interface{}{
		"refresh_token": sc.refreshToken,
		"partner_id":    partnerID,
		"shop_id":       shopID,
	}

	body, err := c.doRequest(ctx, http.MethodPost, shopeePathAccessToken, sc, nil, payload)
	if err != nil {
		return nil, err
	}

	var resp shopeeTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopee: parse token response: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
	}

	refreshed := platform.Credentials{
		"partner_id":    sc.partnerID,
		"partner_key":   sc.partnerKey,
		"shop_id":       sc.shopID,
		"access_token":  resp.AccessToken,
		"refresh_token": resp.RefreshToken,
	}
	var expiresAt *time.Time
	if resp.ExpireIn > 0 {
		t := time.Now().Add(time.Duration(resp.ExpireIn) * time.Second)
		expiresAt = &t
	}
	return &platform.TokenRefresh{Credentials: refreshed, ExpiresAt: expiresAt}, nil
}

// PushInventory updates stock levels item by item. SKUs without a platform
// listing mapping are reported as failures, not errors.
func (c *ShopeeClient) PushInventory(ctx context.Context, creds platform.Credentials, updates []platform.InventoryUpdate) (*platform.PushResult, error) {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return nil, err
	}

	result := &platform.PushResult{TotalCount: len(updates)}
	for _, update := range updates {
		itemID, err := strconv.ParseInt(update.PlatformProductID, 10, 64)
		if err != nil || itemID <= 0 {
			result.AddFailure(update.SKU, "no shopee listing mapped for sku")
			continue
		}

		payload := map[string]interface{}{
			"item_id": itemID,
			"stock_list": []map[string]interface{}{
				{"seller_stock": []map[string]interface{}{{"stock": update.Quantity}}},
			},
		}

		body, err := c.doRequest(ctx, http.MethodPost, shopeePathUpdateStock, sc, nil, payload)
		if err != nil {
			result.AddFailure(update.SKU, err.Error())
			continue
		}

		var resp shopeeStockUpdateResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			result.AddFailure(update.SKU, "invalid response from shopee")
			continue
		}
		if !resp.IsSuccess() {
			result.AddFailure(update.SKU, resp.Message)
			continue
		}
		if len(resp.Response.FailureList) > 0 {
			result.AddFailure(update.SKU, resp.Response.FailureList[0].FailedReason)
			continue
		}
		result.SuccessCount++
	}
	return result, nil
}

// PullOrders fetches orders created inside the window, following cursor
// pagination and resolving details in batches.
func (c *ShopeeClient) PullOrders(ctx context.Context, creds platform.Credentials, window platform.OrderWindow) ([]platform.RemoteOrder, error) {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return nil, err
	}

	var orderSNs []string
	cursor := ""
	for {
		query := url.Values{}
		query.Set("time_range_field", "create_time")
		query.Set("time_from", strconv.FormatInt(window.Since.Unix(), 10))
		query.Set("time_to", strconv.FormatInt(window.Until.Unix(), 10))
		query.Set("page_size", strconv.Itoa(shopeeOrderPageSize))
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		body, err := c.doRequest(ctx, http.MethodGet, shopeePathOrderList, sc, query, nil)
		if err != nil {
			return nil, err
		}

		var resp shopeeOrderListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("shopee: parse order list: %w", err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
		}

		for _, o := range resp.Response.OrderList {
			orderSNs = append(orderSNs, o.OrderSN)
		}
		if !resp.Response.More || resp.Response.NextCursor == "" {
			break
		}
		cursor = resp.Response.NextCursor
	}

	orders := make([]platform.RemoteOrder, 0, len(orderSNs))
	for start := 0; start < len(orderSNs); start += shopeeDetailBatchSize {
		end := start + shopeeDetailBatchSize
		if end > len(orderSNs) {
			end = len(orderSNs)
		}
		details, err := c.fetchOrderDetails(ctx, sc, orderSNs[start:end])
		if err != nil {
			return nil, err
		}
		orders = append(orders, details...)
	}
	return orders, nil
}

// GetOrder fetches a single order by its platform ID
func (c *ShopeeClient) GetOrder(ctx context.Context, creds platform.Credentials, platformOrderID string) (*platform.RemoteOrder, error) {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return nil, err
	}

	orders, err := c.fetchOrderDetails(ctx, sc, []string{platformOrderID})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("shopee: order %s not found", platformOrderID)
	}
	return &orders[0], nil
}

// UpdateOrderStatus reflects a local status change on Shopee. Only shipment
// is pushed; other transitions flow through Shopee's own workflow.
func (c *ShopeeClient) UpdateOrderStatus(ctx context.Context, creds platform.Credentials, platformOrderID, status string) error {
	if status != "shipped" {
		return nil
	}
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"order_sn": platformOrderID,
		"dropoff":  map[string]interface{}{},
	}
	body, err := c.doRequest(ctx, http.MethodPost, shopeePathShipOrder, sc, nil, payload)
	if err != nil {
		return err
	}

	var resp shopeeShipOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("shopee: parse ship order response: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
	}
	return nil
}

// PushProduct creates a product listing on Shopee
func (c *ShopeeClient) PushProduct(ctx context.Context, creds platform.Credentials, product platform.ProductPush) error {
	sc, err := parseShopeeCreds(creds)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"item_name":    product.Name,
		"item_sku":     product.SKU,
		"description":  product.Description,
		"original_price": product.Price.InexactFloat64(),
		"seller_stock": []map[string]interface{}{{"stock": product.Stock}},
	}
	body, err := c.doRequest(ctx, http.MethodPost, shopeePathAddItem, sc, nil, payload)
	if err != nil {
		return err
	}

	var resp shopeeAddItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("shopee: parse add item response: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
	}
	return nil
}

// fetchOrderDetails resolves a batch of order SNs into full orders
func (c *ShopeeClient) fetchOrderDetails(ctx context.Context, sc shopeeCreds, orderSNs []string) ([]platform.RemoteOrder, error) {
	query := url.Values{}
	query.Set("order_sn_list", strings.Join(orderSNs, ","))
	query.Set("response_optional_fields", "item_list,recipient_address,total_amount,actual_shipping_fee,payment_method")

	body, err := c.doRequest(ctx, http.MethodGet, shopeePathOrderDetail, sc, query, nil)
	if err != nil {
		return nil, err
	}

	var resp shopeeOrderDetailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shopee: parse order detail: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("shopee: %s: %s", resp.Error, resp.Message)
	}

	orders := make([]platform.RemoteOrder, 0, len(resp.Response.OrderList))
	for i := range resp.Response.OrderList {
		orders = append(orders, convertShopeeOrder(&resp.Response.OrderList[i]))
	}
	return orders, nil
}

// doRequest performs one signed HTTP request against the Shopee API
func (c *ShopeeClient) doRequest(ctx context.Context, method, path string, sc shopeeCreds, query url.Values, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timestamp := time.Now().Unix()
	if query == nil {
		query = url.Values{}
	}
	query.Set("partner_id", sc.partnerID)
	query.Set("timestamp", strconv.FormatInt(timestamp, 10))
	query.Set("access_token", sc.accessToken)
	query.Set("shop_id", sc.shopID)
	query.Set("sign", shopeeSign(sc, path, timestamp))

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopee: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("shopee: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopee: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopee: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, platform.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, platform.ErrTokenExpired
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("shopee: HTTP %d", resp.StatusCode)
	}
	return body, nil
}

// shopeeSign computes the HMAC-SHA256 request signature
func shopeeSign(sc shopeeCreds, path string, timestamp int64) string {
	base := sc.partnerID + path + strconv.FormatInt(timestamp, 10) + sc.accessToken + sc.shopID
	mac := hmac.New(sha256.New, []byte(sc.partnerKey))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

// convertShopeeOrder maps a Shopee order payload onto the domain shape
func convertShopeeOrder(detail *shopeeOrderDetail) platform.RemoteOrder {
	order := platform.RemoteOrder{
		PlatformOrderID: detail.OrderSN,
		OrderNumber:     detail.OrderSN,
		Status:          mapShopeeOrderStatus(detail.OrderStatus),
		PaymentStatus:   mapShopeePaymentStatus(detail.OrderStatus),
		CustomerName:    detail.RecipientAddress.Name,
		CustomerPhone:   detail.RecipientAddress.Phone,
		ShippingAddress: platform.RemoteAddress{
			Recipient:  detail.RecipientAddress.Name,
			Address:    detail.RecipientAddress.FullAddress,
			City:       detail.RecipientAddress.City,
			State:      detail.RecipientAddress.State,
			PostalCode: detail.RecipientAddress.Zipcode,
			Country:    detail.RecipientAddress.Region,
			Phone:      detail.RecipientAddress.Phone,
		},
		Currency:    detail.Currency,
		ShippingFee: parseDecimal(detail.ActualShippingFee),
		Total:       parseDecimal(detail.TotalAmount),
		OrderedAt:   epochToTime(detail.CreateTime),
	}

	subtotal := decimal.Zero
	for _, item := range detail.ItemList {
		sku := item.ModelSKU
		if sku == "" {
			sku = item.ItemSKU
		}
		unitPrice := parseDecimal(item.ModelDiscountedPrice)
		order.Items = append(order.Items, platform.RemoteOrderItem{
			PlatformItemID: strconv.FormatInt(item.ItemID, 10),
			SKU:            sku,
			Name:           item.ItemName,
			VariantName:    item.ModelName,
			Quantity:       item.ModelQuantityPurchased,
			UnitPrice:      unitPrice,
		})
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(item.ModelQuantityPurchased)))
	}
	order.Subtotal = subtotal

	return order
}

// mapShopeeOrderStatus maps Shopee order status onto the local state machine
func mapShopeeOrderStatus(status string) string {
	switch status {
	case "UNPAID":
		return "pending"
	case "READY_TO_SHIP", "PROCESSED":
		return "confirmed"
	case "SHIPPED", "TO_CONFIRM_RECEIVE":
		return "shipped"
	case "COMPLETED":
		return "delivered"
	case "CANCELLED", "IN_CANCEL":
		return "cancelled"
	default:
		return "pending"
	}
}

// mapShopeePaymentStatus derives the payment state from the order status
func mapShopeePaymentStatus(status string) string {
	switch status {
	case "UNPAID", "CANCELLED", "IN_CANCEL":
		return "pending"
	default:
		return "paid"
	}
}

// Ensure ShopeeClient implements the Client port
var _ platform.Client = (*ShopeeClient)(nil)

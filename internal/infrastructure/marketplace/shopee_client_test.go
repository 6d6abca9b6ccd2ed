package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsync/backend/internal/domain/platform"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_BaseURL(t *testing.T) {
	t.Run("production defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, ShopeeProductionAPIURL, cfg.baseURL(platform.TypeShopee))
		assert.Equal(t, RutenProductionAPIURL, cfg.baseURL(platform.TypeRuten))
		assert.Equal(t, MomoProductionAPIURL, cfg.baseURL(platform.TypeMomo))
	})

	t.Run("sandbox routes shopee only", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Sandbox = true
		assert.Equal(t, ShopeeSandboxAPIURL, cfg.baseURL(platform.TypeShopee))
		assert.Equal(t, RutenProductionAPIURL, cfg.baseURL(platform.TypeRuten))
	})

	t.Run("override wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BaseURLOverrides = map[platform.Type]string{
			platform.TypeShopee: "http://localhost:9999",
		}
		assert.Equal(t, "http://localhost:9999", cfg.baseURL(platform.TypeShopee))
	})
}

// ---------------------------------------------------------------------------
// Credential Parsing Tests
// ---------------------------------------------------------------------------

func TestParseShopeeCreds(t *testing.T) {
	t.Run("complete credentials", func(t *testing.T) {
		creds := platform.Credentials{
			"partner_id":   "100001",
			"partner_key":  "secret",
			"shop_id":      "200002",
			"access_token": "token",
		}
		sc, err := parseShopeeCreds(creds)
		require.NoError(t, err)
		assert.Equal(t, "100001", sc.partnerID)
		assert.Equal(t, "200002", sc.shopID)
	})

	t.Run("missing access token", func(t *testing.T) {
		creds := platform.Credentials{
			"partner_id":  "100001",
			"partner_key": "secret",
			"shop_id":     "200002",
		}
		_, err := parseShopeeCreds(creds)
		assert.ErrorIs(t, err, platform.ErrNotConfigured)
	})
}

// ---------------------------------------------------------------------------
// Client Tests
// ---------------------------------------------------------------------------

func shopeeTestCreds() platform.Credentials {
	return platform.Credentials{
		"partner_id":    "100001",
		"partner_key":   "secret",
		"shop_id":       "200002",
		"access_token":  "token",
		"refresh_token": "refresh",
	}
}

func newTestShopeeClient(serverURL string) *ShopeeClient {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 60000
	cfg.BaseURLOverrides = map[platform.Type]string{platform.TypeShopee: serverURL}
	return NewShopeeClient(cfg)
}

func TestShopeeClient_Type(t *testing.T) {
	client := NewShopeeClient(DefaultConfig())
	assert.Equal(t, platform.TypeShopee, client.Type())
}

func TestShopeeClient_TestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, shopeePathShopInfo, r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("sign"))
			assert.Equal(t, "100001", r.URL.Query().Get("partner_id"))
			json.NewEncoder(w).Encode(shopeeShopInfoResponse{ShopName: "my shop"})
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.TestConnection(context.Background(), shopeeTestCreds())
		assert.NoError(t, err)
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopeeShopInfoResponse{
				shopeeResponse: shopeeResponse{Error: "error_auth", Message: "Invalid access_token"},
			})
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.TestConnection(context.Background(), shopeeTestCreds())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error_auth")
	})

	t.Run("missing credentials", func(t *testing.T) {
		client := NewShopeeClient(DefaultConfig())
		err := client.TestConnection(context.Background(), platform.Credentials{})
		assert.ErrorIs(t, err, platform.ErrNotConfigured)
	})

	t.Run("rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.TestConnection(context.Background(), shopeeTestCreds())
		assert.ErrorIs(t, err, platform.ErrRateLimited)
	})

	t.Run("token expired", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.TestConnection(context.Background(), shopeeTestCreds())
		assert.ErrorIs(t, err, platform.ErrTokenExpired)
	})
}

func TestShopeeClient_RefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, shopeePathAccessToken, r.URL.Path)
		json.NewEncoder(w).Encode(shopeeTokenResponse{
			AccessToken:  "new_token",
			RefreshToken: "new_refresh",
			ExpireIn:     14400,
		})
	}))
	defer server.Close()

	client := newTestShopeeClient(server.URL)
	refresh, err := client.RefreshToken(context.Background(), shopeeTestCreds())
	require.NoError(t, err)
	assert.Equal(t, "new_token", refresh.Credentials["access_token"])
	assert.Equal(t, "new_refresh", refresh.Credentials["refresh_token"])
	assert.Equal(t, "100001", refresh.Credentials["partner_id"])
	require.NotNil(t, refresh.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(4*time.Hour), *refresh.ExpiresAt, time.Minute)
}

func TestShopeeClient_PushInventory(t *testing.T) {
	t.Run("mixed outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopeeStockUpdateResponse{})
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		updates := []platform.InventoryUpdate{
			{SKU: "SKU-1", PlatformProductID: "123456", Quantity: 10},
			{SKU: "SKU-2", PlatformProductID: "", Quantity: 5},
		}

		result, err := client.PushInventory(context.Background(), shopeeTestCreds(), updates)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		assert.Equal(t, 1, result.SuccessCount)
		assert.Equal(t, 1, result.FailedCount)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "SKU-2", result.Failures[0].SKU)
	})

	t.Run("platform rejects item", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := shopeeStockUpdateResponse{}
			resp.Response.FailureList = []shopeeStockFailure{{ItemID: 123456, FailedReason: "item banned"}}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		result, err := client.PushInventory(context.Background(), shopeeTestCreds(), []platform.InventoryUpdate{
			{SKU: "SKU-1", PlatformProductID: "123456", Quantity: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, result.SuccessCount)
		assert.Equal(t, 1, result.FailedCount)
		assert.Equal(t, "item banned", result.Failures[0].Reason)
	})
}

func TestShopeeClient_PullOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case shopeePathOrderList:
			resp := shopeeOrderListResponse{}
			resp.Response.OrderList = []shopeeOrderRef{{OrderSN: "2408SN001"}, {OrderSN: "2408SN002"}}
			json.NewEncoder(w).Encode(resp)
		case shopeePathOrderDetail:
			resp := shopeeOrderDetailResponse{}
			detail1 := shopeeOrderDetail{
				OrderSN:     "2408SN001",
				OrderStatus: "READY_TO_SHIP",
				Currency:    "TWD",
				CreateTime:  1722400000,
				TotalAmount: "1598.00",
				RecipientAddress: shopeeRecipient{
					Name: "林小美",
					City: "台北市",
				},
				ItemList: []shopeeOrderItem{
					{
						ItemID:                 9001,
						ItemName:               "保溫瓶",
						ItemSKU:                "BOTTLE-01",
						ModelSKU:               "BOTTLE-01-RED",
						ModelQuantityPurchased: 2,
						ModelDiscountedPrice:   "799.00",
					},
				},
			}
			detail2 := shopeeOrderDetail{OrderSN: "2408SN002", OrderStatus: "UNPAID"}
			resp.Response.OrderList = []shopeeOrderDetail{detail1, detail2}
			json.NewEncoder(w).Encode(resp)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestShopeeClient(server.URL)
	orders, err := client.PullOrders(context.Background(), shopeeTestCreds(), platform.DefaultOrderWindow(time.Now()))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, "2408SN001", first.PlatformOrderID)
	assert.Equal(t, "confirmed", first.Status)
	assert.Equal(t, "paid", first.PaymentStatus)
	assert.Equal(t, "林小美", first.CustomerName)
	assert.Equal(t, "台北市", first.ShippingAddress.City)
	assert.True(t, first.Total.Equal(decimal.NewFromFloat(1598.00)))
	require.Len(t, first.Items, 1)
	assert.Equal(t, "BOTTLE-01-RED", first.Items[0].SKU)
	assert.Equal(t, int64(2), first.Items[0].Quantity)
	assert.True(t, first.Subtotal.Equal(decimal.NewFromFloat(1598.00)))

	assert.Equal(t, "pending", orders[1].Status)
	assert.Equal(t, "pending", orders[1].PaymentStatus)
}

func TestShopeeClient_UpdateOrderStatus(t *testing.T) {
	t.Run("ships order", func(t *testing.T) {
		var shipped bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, shopeePathShipOrder, r.URL.Path)
			shipped = true
			json.NewEncoder(w).Encode(shopeeShipOrderResponse{})
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.UpdateOrderStatus(context.Background(), shopeeTestCreds(), "2408SN001", "shipped")
		assert.NoError(t, err)
		assert.True(t, shipped)
	})

	t.Run("ignores other transitions", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		defer server.Close()

		client := newTestShopeeClient(server.URL)
		err := client.UpdateOrderStatus(context.Background(), shopeeTestCreds(), "2408SN001", "confirmed")
		assert.NoError(t, err)
	})
}

// ---------------------------------------------------------------------------
// Status Mapping Tests
// ---------------------------------------------------------------------------

func TestMapShopeeOrderStatus(t *testing.T) {
	tests := []struct {
		shopeeStatus string
		expected     string
	}{
		{"UNPAID", "pending"},
		{"READY_TO_SHIP", "confirmed"},
		{"PROCESSED", "confirmed"},
		{"SHIPPED", "shipped"},
		{"TO_CONFIRM_RECEIVE", "shipped"},
		{"COMPLETED", "delivered"},
		{"CANCELLED", "cancelled"},
		{"IN_CANCEL", "cancelled"},
		{"SOMETHING_NEW", "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.shopeeStatus, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapShopeeOrderStatus(tt.shopeeStatus))
		})
	}
}

// ---------------------------------------------------------------------------
// Helper Tests
// ---------------------------------------------------------------------------

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		expected decimal.Decimal
	}{
		{"199.00", decimal.NewFromFloat(199.00)},
		{"0.01", decimal.NewFromFloat(0.01)},
		{"", decimal.Zero},
		{"garbage", decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseDecimal(tt.input)
			assert.True(t, result.Equal(tt.expected), "expected %s but got %s", tt.expected, result)
		})
	}
}

func TestEpochToTime(t *testing.T) {
	assert.True(t, epochToTime(0).IsZero())
	assert.True(t, epochToTime(-5).IsZero())
	assert.Equal(t, int64(1722400000), epochToTime(1722400000).Unix())
}

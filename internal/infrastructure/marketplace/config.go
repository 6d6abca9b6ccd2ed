package marketplace

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/marketsync/backend/internal/domain/platform"
)

// Production API endpoints per platform
const (
	ShopeeProductionAPIURL   = "https://partner.shopeemobile.com"
	ShopeeSandboxAPIURL      = "https://partner.test-stable.shopeemobile.com"
	RutenProductionAPIURL    = "https://partner.ruten.com.tw/api/v1"
	MomoProductionAPIURL     = "https://ecapi.momo.com.tw/v1"
	ShoplineProductionAPIURL = "https://open.shopline.io/v1"
	PchomeProductionAPIURL   = "https://api.pchome.com.tw/v1"
	YahooProductionAPIURL    = "https://tw.mall.yahooapis.com/v1"
)

// defaultRequestsPerMinute bounds outbound calls per platform client
const defaultRequestsPerMinute = 100

// Config holds marketplace client configuration
type Config struct {
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// RequestsPerMinute caps the outbound call rate per platform
	RequestsPerMinute int
	// Sandbox routes Shopee calls to the test environment
	Sandbox bool
	// BaseURLOverrides replaces the production endpoint per platform,
	// used for local development against stub servers
	BaseURLOverrides map[platform.Type]string
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		RequestsPerMinute: defaultRequestsPerMinute,
	}
}

// baseURL resolves the endpoint for a platform
func (c Config) baseURL(platformType platform.Type) string {
	if url, ok := c.BaseURLOverrides[platformType]; ok && url != "" {
		return url
	}
	switch platformType {
	case platform.TypeShopee:
		if c.Sandbox {
			return ShopeeSandboxAPIURL
		}
		return ShopeeProductionAPIURL
	case platform.TypeRuten:
		return RutenProductionAPIURL
	case platform.TypeMomo:
		return MomoProductionAPIURL
	case platform.TypeShopline:
		return ShoplineProductionAPIURL
	case platform.TypePchome:
		return PchomeProductionAPIURL
	case platform.TypeYahoo:
		return YahooProductionAPIURL
	}
	return ""
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// limiter builds the per-client rate limiter. The burst allows a short
// batch of calls without letting a push exceed the per-minute cap.
func (c Config) limiter() *rate.Limiter {
	rpm := c.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60), burst)
}

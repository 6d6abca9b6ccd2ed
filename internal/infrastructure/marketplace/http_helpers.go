package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// maxResponseSize is the maximum allowed response size from a platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// parseDecimal parses a platform money string, returning zero on garbage
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// epochToTime converts a unix seconds timestamp, zero time on non-positive input
func epochToTime(epoch int64) time.Time {
	if epoch <= 0 {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}

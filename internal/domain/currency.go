package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	KES Currency = "KES"
	USD Currency = "USD"
)

// MinChargeKES is the smallest amount the mobile rail will push. Requests
// below it are rejected before any outbound call.
var MinChargeKES = decimal.NewFromInt(10)

// ConvertUSDToKES converts a USD amount at the given rate, rounded to whole
// shillings. Negative and non-finite inputs clamp to zero rather than
// producing a bogus charge.
func ConvertUSDToKES(amountUSD, rate float64) int64 {
	if math.IsNaN(amountUSD) || math.IsInf(amountUSD, 0) {
		return 0
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	v := math.Round(amountUSD * rate)
	if v <= 0 {
		return 0
	}
	return int64(v)
}

package snapshot

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DollarsToCents converts a dollar amount ("$1,234.50" or "25") to integer
// cents, rounding half away from zero the way the payout feed does. The bool
// is false for empty or unparseable input; a bad money string is missing
// data, never zero dollars.
func DollarsToCents(raw string) (int64, bool) {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	return cents.IntPart(), true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

func round4Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round4(*v)
	return &r
}

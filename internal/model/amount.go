package model

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CoerceAmount converts a loosely typed amount into a decimal. Values that
// are not numeric (nil, NaN, free text) yield zero and ok=false so that one
// bad record degrades a total instead of failing it.
func CoerceAmount(v any) (amount decimal.Decimal, ok bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case json.Number:
		return parseAmount(string(n))
	case string:
		return parseAmount(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		return CoerceAmount(float64(n))
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	}
	return decimal.Zero, false
}

// parseAmount accepts "50000", "50 000" and "50000.50".
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

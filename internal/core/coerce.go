package core

import (
	"strings"

	"github.com/shockerli/cvt"
	"github.com/shopspring/decimal"
)

var (
	defaultQuantity = decimal.NewFromInt(1)
	defaultPrice    = decimal.Zero
)

// CoerceQuantity converts form input (string, number, nil) to a quantity.
// Input that is not numeric becomes 1.
func CoerceQuantity(v any) decimal.Decimal {
	return coerceDecimal(v, defaultQuantity)
}

// CoercePrice converts form input to a unit price. Input that is not numeric
// becomes 0.
func CoercePrice(v any) decimal.Decimal {
	return coerceDecimal(v, defaultPrice)
}

func coerceDecimal(v any, fallback decimal.Decimal) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return fallback
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return fallback
		}
		return *x
	}
	s, err := cvt.StringE(v)
	if err != nil {
		return fallback
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fallback
	}
	return d
}

package connector

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// venuePrecision is the max number of fractional digits Binance accepts for
// order quantity and price
const venuePrecision = 8

var (
	hundred = decimal.NewFromInt(100)
)

// parseDecimal reads a venue numeric string without going through float64.
func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse %s: %q, err: %w", field, value, err)
	}

	return d, nil
}

// formatDecimal renders d with exactly venuePrecision fractional digits,
// rounding half away from zero and always using '.' as separator.
func formatDecimal(d decimal.Decimal) string {
	return d.Round(venuePrecision).StringFixed(venuePrecision)
}

// feeFraction converts a percentage string ("0.1" means 0.1%) to a fraction.
func feeFraction(percentage string) (decimal.Decimal, error) {
	pct, err := parseDecimal("fee percentage", percentage)
	if err != nil {
		return decimal.Zero, err
	}

	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("fee percentage %s not in range: 0 - 100", pct)
	}

	return pct.DivRound(hundred, venuePrecision), nil
}

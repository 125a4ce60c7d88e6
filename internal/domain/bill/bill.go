// Package bill aggregates order subtotals into a table total with tax and tip.
package bill

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/order"
)

// Rate bounds accepted by Settings.Validate, in percent.
const (
	MinRatePercent = 0
	MaxRatePercent = 20
)

var hundred = decimal.NewFromInt(100)

// Settings holds the percentage rates applied to the table subtotal.
type Settings struct {
	TaxRatePercent int
	TipRatePercent int
}

// DefaultSettings returns the rates a new session starts with.
func DefaultSettings() Settings {
	return Settings{TaxRatePercent: 10, TipRatePercent: 5}
}

// RateOutOfRangeError indicates a rate outside [MinRatePercent, MaxRatePercent].
type RateOutOfRangeError struct {
	Field string
	Value int
}

func (e *RateOutOfRangeError) Error() string {
	return fmt.Sprintf("%s rate %d%% out of range [%d, %d]", e.Field, e.Value, MinRatePercent, MaxRatePercent)
}

// Validate checks both rates against the accepted bounds.
func (s Settings) Validate() error {
	if s.TaxRatePercent < MinRatePercent || s.TaxRatePercent > MaxRatePercent {
		return &RateOutOfRangeError{Field: "tax", Value: s.TaxRatePercent}
	}
	if s.TipRatePercent < MinRatePercent || s.TipRatePercent > MaxRatePercent {
		return &RateOutOfRangeError{Field: "tip", Value: s.TipRatePercent}
	}
	return nil
}

// Summary is the aggregate bill for a set of orders.
type Summary struct {
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	TipAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// Aggregate sums order subtotals and applies the settings' rates.
//
// Amounts are exact: a whole-unit subtotal times an integer percentage divided
// by 100 always has at most two fractional digits, so no rounding happens here.
// Aggregate does not validate settings.
func Aggregate(orders []order.Order, settings Settings) Summary {
	subtotal := decimal.Zero
	for _, o := range orders {
		subtotal = subtotal.Add(o.Subtotal)
	}

	tax := percentOf(subtotal, settings.TaxRatePercent)
	tip := percentOf(subtotal, settings.TipRatePercent)

	return Summary{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		TipAmount:  tip,
		GrandTotal: subtotal.Add(tax).Add(tip),
	}
}

func percentOf(amount decimal.Decimal, percent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
}

// Package services provides pricing calculation, quote persistence and
// export functions for quotes.
package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MeasureType selects the formula used to turn an item's measurements into
// the factor each option's multiplier cost is applied to.
type MeasureType int

const (
	MeasureArea         MeasureType = 1 // length × height × quantity
	MeasureLinear       MeasureType = 2 // length × quantity
	MeasureQuantityOnly MeasureType = 3 // quantity
)

// GSTRate is the goods and services tax applied to excl. GST amounts.
var GSTRate = decimal.RequireFromString("0.10")

var gstMultiplier = decimal.NewFromInt(1).Add(GSTRate)

// MeasureTypeFromCode maps a stored measure type code to a MeasureType.
// Missing or unknown codes fall back to Area.
func MeasureTypeFromCode(code int) MeasureType {
	switch MeasureType(code) {
	case MeasureLinear:
		return MeasureLinear
	case MeasureQuantityOnly:
		return MeasureQuantityOnly
	default:
		return MeasureArea
	}
}

// String returns the display name of the measure type.
func (m MeasureType) String() string {
	switch m {
	case MeasureLinear:
		return "Linear"
	case MeasureQuantityOnly:
		return "Quantity Only"
	default:
		return "Area"
	}
}

// Measurements are the item dimensions the formulas read from.
// Length is shown as "Width" for Area products.
type Measurements struct {
	Quantity decimal.Decimal
	Length   decimal.Decimal
	Height   decimal.Decimal
}

// Factor returns the multiplier base for the measure type.
func (m MeasureType) Factor(ms Measurements) decimal.Decimal {
	switch m {
	case MeasureLinear:
		return ms.Length.Mul(ms.Quantity)
	case MeasureQuantityOnly:
		return ms.Quantity
	default:
		return ms.Length.Mul(ms.Height).Mul(ms.Quantity)
	}
}

// OptionCost is the cost contribution of one selected variable option.
type OptionCost struct {
	OptionID       string
	BaseCost       decimal.Decimal
	MultiplierCost decimal.Decimal
}

// CalcItemCost returns the excl. GST cost of an item at full precision:
// the sum over options of base + multiplier × factor.
// An empty option list costs nothing.
func CalcItemCost(mt MeasureType, ms Measurements, options []OptionCost) decimal.Decimal {
	factor := mt.Factor(ms)
	total := decimal.Zero
	for _, o := range options {
		total = total.Add(o.BaseCost.Add(o.MultiplierCost.Mul(factor)))
	}
	return total
}

// RoundMoney rounds an amount to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ApplyGST returns the GST inclusive amount, rounded to cents.
func ApplyGST(exclGST decimal.Decimal) decimal.Decimal {
	return RoundMoney(exclGST.Mul(gstMultiplier))
}

// QuoteTotals holds the aggregated, rounded totals for a quote.
type QuoteTotals struct {
	ExclGST decimal.Decimal
	GST     decimal.Decimal
	InclGST decimal.Decimal
}

// CalcQuoteTotals sums item costs at full precision and rounds the result.
// InclGST is derived from the rounded ExclGST, the same figure that is stored.
func CalcQuoteTotals(itemCosts []decimal.Decimal) QuoteTotals {
	sum := decimal.Zero
	for _, c := range itemCosts {
		sum = sum.Add(c)
	}
	excl := RoundMoney(sum)
	incl := ApplyGST(excl)
	return QuoteTotals{
		ExclGST: excl,
		GST:     incl.Sub(excl),
		InclGST: incl,
	}
}

// Bounds on user supplied numbers. Anything longer, larger or smaller is not
// a plausible measurement or price and is coerced to zero.
const (
	maxNumberLen    = 64
	maxIntegerDigit = 15
	minFracDigit    = -12
)

// ParseMeasurement parses a user supplied number. Empty, malformed, negative
// and out of range input is coerced to zero.
func ParseMeasurement(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxNumberLen {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// "Inf", "0x1p3" and friends; strconv is more lenient than decimal.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return decimal.Zero
		}
		return MeasurementFromFloat(f)
	}
	return ClampAmount(d)
}

// MeasurementFromFloat converts a stored or decoded float, coercing NaN,
// infinities, negative and out of range values to zero.
func MeasurementFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return ClampAmount(decimal.NewFromFloat(f))
}

// ClampAmount returns d unchanged when it is positive and below 10^15, and
// zero otherwise. Vanishingly small values are zeroed too. Only the digit
// count and exponent are inspected, so inputs such as 1e5000000 stay cheap.
func ClampAmount(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	// roughly maxNumberLen decimal digits
	if d.Coefficient().BitLen() > 4*maxNumberLen {
		return decimal.Zero
	}
	mag := int64(d.NumDigits()) + int64(d.Exponent())
	if mag > maxIntegerDigit || mag < minFracDigit {
		return decimal.Zero
	}
	return d
}

// MoneyFromFloat converts a stored monetary value. Non-finite values become zero.
func MoneyFromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

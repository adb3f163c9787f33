package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as Australian dollars with thousands
// separators, e.g. $1,234.56. The result always has exactly 2 decimal places.
func FormatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	raw := amount.Abs().StringFixed(2)

	// Split into integer and decimal parts.
	parts := strings.SplitN(raw, ".", 2)
	result := "$" + applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative && raw != "0.00" {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts a comma between every group of 3 digits,
// counting from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

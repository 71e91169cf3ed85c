package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMYR renders an amount as Malaysian Ringgit, e.g. "RM 1,250,000.00".
// Used in agent-facing WhatsApp messages.
func FormatMYR(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole := parts[0]

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := "RM " + b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

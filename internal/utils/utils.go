package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencyCode = "LKR"

// FormatCurrency renders an amount with two decimals and comma thousands
// separators, e.g. 12,345.60.
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + "." + frac
}

func FormatLKR(amount decimal.Decimal) string {
	return CurrencyCode + " " + FormatCurrency(amount)
}

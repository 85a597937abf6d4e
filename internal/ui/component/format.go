package component

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders v with the given number of decimals and thousands
// separators, e.g. 990099009.9 -> "990,099,009.90".
func FormatAmount(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatPrice renders a tiny ETH-per-token price without exponent notation.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).Truncate(18).String() + " ETH"
}

package greenops

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer is the locale-aware message printer for number formatting.
// Uses the French locale to match the rest of the report.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.French)

// FormatNumber formats an integer with French thousand separators.
func FormatNumber(n int64) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatLarge formats large numbers with abbreviated notation.
//
// Values below LargeNumberThreshold (1 million) use a rounded grouped integer.
// Values at or above LargeNumberThreshold use "X,X millions".
// Values at or above BillionThreshold use "X,X milliards".
func FormatLarge(n float64) string {
	switch {
	case n >= BillionThreshold:
		return printer.Sprint(number.Decimal(n/BillionThreshold, number.Scale(1))) + " milliards"
	case n >= LargeNumberThreshold:
		return printer.Sprint(number.Decimal(n/LargeNumberThreshold, number.Scale(1))) + " millions"
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}

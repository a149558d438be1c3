// Package format renders prices, percentages and chart timestamps for
// display. Missing or non-finite values render as Placeholder.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"GridironMarket/internal/calculator"
)

// Placeholder stands in for any value that cannot be shown.
const Placeholder = "—"

// Location is the zone chart labels are rendered in.
var Location = time.Local

func invalid(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Number formats v with thousands separators and at most decimals digits.
func Number(v float64, decimals int) string {
	if invalid(v) {
		return Placeholder
	}
	return humanize.CommafWithDigits(v, decimals)
}

// Currency formats v as US dollars with two decimals.
func Currency(v float64) string {
	if invalid(v) {
		return Placeholder
	}
	return sign(v) + "$" + humanize.FormatFloat("#,###.##", math.Abs(v))
}

// ChartPrice is Currency, dropping cents once the price reaches 1000.
func ChartPrice(v float64) string {
	if invalid(v) {
		return Placeholder
	}
	if math.Abs(v) >= 1000 {
		return sign(v) + "$" + humanize.FormatFloat("#,###.", math.Abs(v))
	}
	return Currency(v)
}

// SignedCurrency always carries an explicit sign: "+$4.20", "-$1.00".
func SignedCurrency(v float64) string {
	if invalid(v) {
		return Placeholder
	}
	if v >= 0 {
		return "+" + Currency(v)
	}
	return Currency(v)
}

func sign(v float64) string {
	if v < 0 {
		return "-"
	}
	return ""
}

// Percent formats a percentage value (12.5 -> "12.50%").
func Percent(v float64) string {
	if invalid(v) {
		return Placeholder
	}
	return humanize.FormatFloat("#,###.##", v) + "%"
}

// SignedPercent formats with an explicit sign (3.2 -> "+3.20%").
func SignedPercent(v float64) string {
	if invalid(v) {
		return Placeholder
	}
	s := "+"
	if v < 0 {
		s = "-"
	}
	return fmt.Sprintf("%s%.2f%%", s, math.Abs(v))
}

// OptionalPercent renders SignedPercent when ok, else Placeholder.
func OptionalPercent(v float64, ok bool) string {
	if !ok {
		return Placeholder
	}
	return SignedPercent(v)
}

// PercentPtr is OptionalPercent for nullable values.
func PercentPtr(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return SignedPercent(*v)
}

// Range renders "low - high" with at most two decimals.
func Range(low, high float64) string {
	if invalid(low) || invalid(high) {
		return Placeholder
	}
	return Number(low, 2) + " - " + Number(high, 2)
}

// Volume renders a share count with separators.
func Volume(v *float64) string {
	if v == nil || invalid(*v) || *v == 0 {
		return Placeholder
	}
	return humanize.Comma(int64(math.Round(*v)))
}

// TickLabel is the axis label for a timestamp at the given range.
func TickLabel(r calculator.Range, ts *int64) string {
	if ts == nil {
		return ""
	}
	t := time.UnixMilli(*ts).In(Location)
	switch r {
	case calculator.Range1Min:
		return t.Format("15:04:05")
	case calculator.Range5Min, calculator.Range1H, calculator.Range1D:
		return t.Format("15:04")
	case calculator.Range1W:
		return t.Format("Mon 15h")
	default:
		return t.Format("Jan 2")
	}
}

// DisplayTimestamp is the "Updated ..." label for a point; fallback is
// used when the point has no timestamp.
func DisplayTimestamp(r calculator.Range, ts *int64, fallback string) string {
	if ts == nil {
		if fallback == "" {
			return Placeholder
		}
		return fallback
	}
	t := time.UnixMilli(*ts).In(Location)
	switch r {
	case calculator.Range1Min:
		return t.Format("15:04:05")
	case calculator.Range5Min, calculator.Range1H, calculator.Range1D:
		return t.Format("15:04")
	case calculator.Range1W:
		return t.Format("Mon 15:04")
	default:
		return t.Format("Jan 2, 2006")
	}
}

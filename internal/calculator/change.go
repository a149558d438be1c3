package calculator

import (
	"time"

	"GridironMarket/internal/model"
)

// Trailing windows for the week/month change badges. A month is four weeks.
const (
	WeekWindow  = 7 * day
	MonthWindow = 4 * WeekWindow
)

// PercentChange returns the percent move from reference to current.
// There is no value when either price is zero or not finite.
func PercentChange(current, reference float64) (float64, bool) {
	if !isFinite(current) || !isFinite(reference) || current == 0 || reference == 0 {
		return 0, false
	}
	return (current - reference) / reference * 100, true
}

// SelectionChange computes end-minus-start for a normalized selection.
func SelectionChange(sel model.Selection) (model.DerivedChange, bool) {
	start, end := sel.Start.Price, sel.End.Price
	if !isFinite(start) || !isFinite(end) || start == 0 {
		return model.DerivedChange{}, false
	}
	change := end - start
	return model.DerivedChange{
		AbsoluteChange: change,
		PercentChange:  change / start * 100,
	}, true
}

// NormalizeSelection orders sel so Start precedes End in series, whichever
// direction it was dragged. Points are matched by timestamp and price; when
// either end is not in series the timestamps decide. ok is false when both
// ends resolve to the same point.
func NormalizeSelection(series []model.DataPoint, sel model.Selection) (model.Selection, bool) {
	i1 := indexOf(series, sel.Start)
	i2 := indexOf(series, sel.End)

	if i1 >= 0 && i2 >= 0 {
		if i1 == i2 {
			return model.Selection{}, false
		}
		if i1 > i2 {
			i1, i2 = i2, i1
		}
		return model.Selection{Start: series[i1], End: series[i2]}, true
	}

	if model.SameTimestamp(sel.Start, sel.End) {
		return model.Selection{}, false
	}
	if sel.Start.TimestampOr(0) > sel.End.TimestampOr(0) {
		return model.Selection{Start: sel.End, End: sel.Start}, true
	}
	return sel, true
}

func indexOf(series []model.DataPoint, p model.DataPoint) int {
	for i, s := range series {
		if model.SameTimestamp(s, p) && s.Price == p.Price {
			return i
		}
	}
	return -1
}

// ReferencePoint finds the newest point at or before latestTs-window in a
// chronologically sorted series, falling back to the earliest point.
func ReferencePoint(sorted []model.DataPoint, window time.Duration, latestTs int64) (model.DataPoint, bool) {
	if len(sorted) == 0 {
		return model.DataPoint{}, false
	}
	threshold := latestTs - window.Milliseconds()
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		if p.HasTimestamp() && *p.Timestamp <= threshold {
			return p, true
		}
	}
	return sorted[0], true
}

// TrailingChange is the percent change of the latest price against the
// reference point window before it (week-over-week, month-over-month).
func TrailingChange(points []model.DataPoint, window time.Duration) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	sorted := SortByTimestamp(points)
	latest := sorted[len(sorted)-1]
	ref, ok := ReferencePoint(sorted, window, latest.TimestampOr(nowMillis()))
	if !ok {
		return 0, false
	}
	return PercentChange(latest.Price, ref.Price)
}

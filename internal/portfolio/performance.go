package portfolio

import (
	"math"
	"time"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
)

// DefaultRange is the range the performance chart opens on.
const DefaultRange = calculator.Range1W

const day = 24 * time.Hour

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// Performance is the derived view of the account value history.
type Performance struct {
	Points      []model.DataPoint `json:"points"`
	Latest      float64           `json:"latest"`
	WeekChange  *float64          `json:"week_change,omitempty"`
	MonthChange *float64          `json:"month_change,omitempty"`
	DayChange   *float64          `json:"day_change,omitempty"`
	Domain      *model.Domain     `json:"domain,omitempty"`
}

// NormalizeHistory turns account history into chart points. Points with
// neither a timestamp nor a parseable date are spread one day apart
// ending at now, by position.
func NormalizeHistory(history []model.PortfolioPoint, now time.Time) []model.DataPoint {
	if len(history) == 0 {
		return nil
	}
	base := now.Add(-time.Duration(len(history)-1) * day)

	points := make([]model.DataPoint, len(history))
	for i, h := range history {
		var ts time.Time
		switch {
		case h.Timestamp != nil:
			ts = time.UnixMilli(*h.Timestamp)
		default:
			parsed, ok := parseDate(h.Date)
			if !ok {
				parsed = base.Add(time.Duration(i) * day)
			}
			ts = parsed
		}
		points[i] = model.NewDataPoint(ts.In(format.Location).Format("Jan 2"), h.Value, ts)
	}
	return calculator.SortByTimestamp(points)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Analyze computes the performance view of history at now.
func Analyze(history []model.PortfolioPoint, now time.Time) Performance {
	points := NormalizeHistory(history, now)
	if len(points) == 0 {
		return Performance{Points: []model.DataPoint{}}
	}

	latest := points[len(points)-1]
	perf := Performance{Points: points, Latest: latest.Price}
	latestTs := latest.TimestampOr(now.UnixMilli())

	change := func(window time.Duration) *float64 {
		ref, ok := calculator.ReferencePoint(points, window, latestTs)
		if !ok {
			return nil
		}
		if v, ok := calculator.PercentChange(latest.Price, ref.Price); ok {
			return &v
		}
		return nil
	}
	perf.WeekChange = change(calculator.WeekWindow)
	perf.MonthChange = change(calculator.MonthWindow)
	perf.DayChange = change(day)

	if d, ok := Domain(points); ok {
		perf.Domain = &d
	}
	return perf
}

// Domain pads the value range by 10% of the span, or 5% of the minimum
// (10 when the minimum is zero) if that is larger. The lower bound is
// clamped at zero.
func Domain(points []model.DataPoint) (model.Domain, bool) {
	low, high, ok := calculator.PriceExtent(points)
	if !ok {
		return model.Domain{}, false
	}
	floor := low * 0.05
	if floor == 0 {
		floor = 10
	}
	pad := math.Max((high-low)*0.1, floor)
	return model.Domain{Min: math.Max(0, low-pad), Max: high + pad}, true
}

// DayChange is the absolute and percent move of the account over the last
// day of history, when it can be computed.
func DayChange(points []model.DataPoint) (abs, pct float64, ok bool) {
	if len(points) < 2 {
		return 0, 0, false
	}
	latest := points[len(points)-1]
	ref, found := calculator.ReferencePoint(points, day, latest.TimestampOr(0))
	if !found {
		return 0, 0, false
	}
	pct, ok = calculator.PercentChange(latest.Price, ref.Price)
	if !ok {
		return 0, 0, false
	}
	return latest.Price - ref.Price, pct, true
}

// WithDayChange fills the day change of stats from the performance points.
func WithDayChange(stats model.PortfolioStats, perf Performance) model.PortfolioStats {
	if abs, pct, ok := DayChange(perf.Points); ok {
		stats.DayChange = abs
		stats.DayChangePercent = pct
		stats.HasDayChange = true
	}
	return stats
}

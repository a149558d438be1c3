package calculator

import (
	"math"

	"GridironMarket/internal/model"
)

// DefaultDomain is used when a series has no finite prices.
var DefaultDomain = model.Domain{Min: 0, Max: 250}

// DomainOptions controls axis padding.
type DomainOptions struct {
	PaddingRatio float64 // fraction of the data span added on each side
	MinPadding   float64 // absolute floor for the padding
	Default      model.Domain
}

// DefaultDomainOptions pads by 10% of the span, at least one unit.
func DefaultDomainOptions() DomainOptions {
	return DomainOptions{PaddingRatio: 0.1, MinPadding: 1, Default: DefaultDomain}
}

// PriceExtent scans points for the lowest and highest finite price.
// ok is false when no finite price exists.
func PriceExtent(points []model.DataPoint) (low, high float64, ok bool) {
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, p := range points {
		if !isFinite(p.Price) {
			continue
		}
		if p.Price < low {
			low = p.Price
		}
		if p.Price > high {
			high = p.Price
		}
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return low, high, true
}

// AxisDomain resolves the value-axis bounds for points. A supplied fixed
// domain wins unless it is degenerate (Min == Max).
func AxisDomain(points []model.DataPoint, fixed *model.Domain, opts DomainOptions) model.Domain {
	if fixed != nil && fixed.Min != fixed.Max {
		return *fixed
	}

	low, high, ok := PriceExtent(points)
	if !ok {
		return opts.Default
	}

	padding := math.Max((high-low)*opts.PaddingRatio, opts.MinPadding)
	lower := math.Max(0, low-padding)
	upper := high + padding
	if lower == upper {
		return model.Domain{Min: math.Max(0, lower-1), Max: upper + 1}
	}
	return model.Domain{Min: lower, Max: upper}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

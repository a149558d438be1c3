package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"GridironMarket/internal/model"
)

// Range is a named chart window/downsampling configuration.
type Range string

const (
	Range1Min Range = "1MIN"
	Range5Min Range = "5MIN"
	Range1H   Range = "1H"
	Range1D   Range = "1D"
	Range1W   Range = "1W"
	RangeAll  Range = "ALL"
)

// RangeSequence is the display order of the range selector.
var RangeSequence = []Range{Range1Min, Range5Min, Range1H, Range1D, Range1W, RangeAll}

// ErrUnknownRange is returned for values outside the Range enumeration.
var ErrUnknownRange = errors.New("unknown chart range")

// RangeConfig maps a Range to its trailing window and bucket width.
// A zero Window means full history; a zero Bucket means no downsampling.
type RangeConfig struct {
	Label  string
	Window time.Duration
	Bucket time.Duration
}

const day = 24 * time.Hour

var rangeConfigs = map[Range]RangeConfig{
	Range1Min: {Label: "1m", Window: time.Minute, Bucket: 5 * time.Second},
	Range5Min: {Label: "5m", Window: 5 * time.Minute, Bucket: 15 * time.Second},
	Range1H:   {Label: "1h", Window: time.Hour, Bucket: time.Minute},
	Range1D:   {Label: "1d", Window: day, Bucket: 5 * time.Minute},
	Range1W:   {Label: "1w", Window: 7 * day, Bucket: 30 * time.Minute},
	RangeAll:  {Label: "All", Bucket: 2 * time.Hour},
}

// Config returns the configuration for r.
func Config(r Range) (RangeConfig, error) {
	cfg, ok := rangeConfigs[r]
	if !ok {
		return RangeConfig{}, fmt.Errorf("%w: %q", ErrUnknownRange, string(r))
	}
	return cfg, nil
}

// Label returns the short selector label for r, or the raw value if unknown.
func (r Range) Label() string {
	if cfg, ok := rangeConfigs[r]; ok {
		return cfg.Label
	}
	return string(r)
}

// ParseRange accepts either the enum value ("1D") or its label ("1d").
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if r := Range(strings.ToUpper(s)); r.valid() {
		return r, nil
	}
	for _, r := range RangeSequence {
		if strings.EqualFold(rangeConfigs[r].Label, s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

func (r Range) valid() bool {
	_, ok := rangeConfigs[r]
	return ok
}

// nowMillis is the wall-clock fallback used when the newest point has no timestamp.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// SortByTimestamp returns a copy of points ordered ascending by timestamp.
// Missing timestamps sort as 0; ties keep their input order.
func SortByTimestamp(points []model.DataPoint) []model.DataPoint {
	sorted := make([]model.DataPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampOr(0) < sorted[j].TimestampOr(0)
	})
	return sorted
}

// FilterAndBucket restricts points to the trailing window of r and
// downsamples them to one point per bucket. The newest price inside a bucket
// wins; the bucket keeps the timestamp and label of the point that opened it.
// A non-empty input always yields a non-empty result.
func FilterAndBucket(points []model.DataPoint, r Range) ([]model.DataPoint, error) {
	cfg, err := Config(r)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return []model.DataPoint{}, nil
	}

	sorted := SortByTimestamp(points)
	filtered := sorted

	if cfg.Window > 0 {
		last := sorted[len(sorted)-1]
		latestTs := last.TimestampOr(nowMillis())
		threshold := latestTs - cfg.Window.Milliseconds()

		filtered = make([]model.DataPoint, 0, len(sorted))
		for _, p := range sorted {
			if p.TimestampOr(latestTs) >= threshold {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			filtered = []model.DataPoint{last}
		}
	}

	if cfg.Bucket > 0 {
		filtered = bucketize(filtered, cfg.Bucket.Milliseconds())
	}
	return filtered, nil
}

func bucketize(points []model.DataPoint, bucketMs int64) []model.DataPoint {
	bucketed := make([]model.DataPoint, 0, len(points))
	var openTs int64
	for _, p := range points {
		ts := p.TimestampOr(0)
		if len(bucketed) == 0 || ts-openTs >= bucketMs {
			bucketed = append(bucketed, p)
			openTs = ts
			continue
		}
		bucketed[len(bucketed)-1].Price = p.Price
	}
	return bucketed
}

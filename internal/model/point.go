package model

import "time"

// DataPoint is a single chart sample. Timestamp is epoch milliseconds and
// may be nil when the source carried no usable time.
type DataPoint struct {
	Time      string  `json:"time"`
	Price     float64 `json:"price"`
	Timestamp *int64  `json:"timestamp,omitempty"`
}

// NewDataPoint builds a point stamped at t.
func NewDataPoint(label string, price float64, t time.Time) DataPoint {
	ms := t.UnixMilli()
	return DataPoint{Time: label, Price: price, Timestamp: &ms}
}

// HasTimestamp reports whether the point can be placed on a time axis.
func (p DataPoint) HasTimestamp() bool { return p.Timestamp != nil }

// TimestampOr returns the timestamp, or fallback when it is missing.
func (p DataPoint) TimestampOr(fallback int64) int64 {
	if p.Timestamp == nil {
		return fallback
	}
	return *p.Timestamp
}

// SameTimestamp compares two optional timestamps; two missing ones are equal.
func SameTimestamp(a, b DataPoint) bool {
	if a.Timestamp == nil || b.Timestamp == nil {
		return a.Timestamp == nil && b.Timestamp == nil
	}
	return *a.Timestamp == *b.Timestamp
}

// Millis is a small helper for building optional timestamps.
func Millis(ms int64) *int64 { return &ms }

package model

// Selection is a drag-selected span of a series.
type Selection struct {
	Start DataPoint `json:"start"`
	End   DataPoint `json:"end"`
}

// DerivedChange is the delta between two prices.
type DerivedChange struct {
	AbsoluteChange float64 `json:"absolute_change"`
	PercentChange  float64 `json:"percent_change"`
}

// Domain is the [Min, Max] bounds of a value axis.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

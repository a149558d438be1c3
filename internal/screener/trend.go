package screener

// Trend is a momentum label for a week change percentage.
type Trend struct {
	MinChange float64
	Label     string
}

// Trends maps week change to a label, checked top-down.
var Trends = []Trend{
	{10, "Surging"},
	{3, "Rising"},
	{-3, "Steady"},
	{-10, "Slipping"},
}

// DefaultTrend is the label for changes below every threshold.
var DefaultTrend = Trend{Label: "Sliding"}

// Classify maps a week change to its trend. A missing change is "New".
func Classify(weekChange *float64) string {
	if weekChange == nil {
		return "New"
	}
	for _, t := range Trends {
		if *weekChange >= t.MinChange {
			return t.Label
		}
	}
	return DefaultTrend.Label
}

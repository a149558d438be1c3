package chart

import (
	"time"

	"GridironMarket/internal/calculator"
	"GridironMarket/internal/format"
	"GridironMarket/internal/model"
)

// Input is the data a chart is rendered from. The optional fields override
// values that would otherwise be derived from Points.
type Input struct {
	TeamName string
	Points   []model.DataPoint
	Range    calculator.Range

	Price              *float64
	WeekChangePercent  *float64
	MonthChangePercent *float64
	PriceDomain        *model.Domain

	DomainOptions calculator.DomainOptions
}

// View is everything a host needs to draw one frame of the chart.
type View struct {
	TeamName   string            `json:"team_name"`
	Range      calculator.Range  `json:"range"`
	RangeLabel string            `json:"range_label"`
	Series     []model.DataPoint `json:"series"`
	Ticks      []string          `json:"ticks"`
	Domain     model.Domain      `json:"domain"`

	Hovering     bool             `json:"hovering"`
	Display      *model.DataPoint `json:"display,omitempty"`
	DisplayPrice string           `json:"display_price"`
	DisplayTime  string           `json:"display_time"`

	Selection  *model.Selection     `json:"selection,omitempty"`
	Change     *model.DerivedChange `json:"change,omitempty"`
	ChangeText string               `json:"change_text,omitempty"`

	WeekChange  *float64 `json:"week_change,omitempty"`
	MonthChange *float64 `json:"month_change,omitempty"`
	WeekText    string   `json:"week_text"`
	MonthText   string   `json:"month_text"`
}

// Render derives the view for in under the session's interaction state.
// The only error is an unknown range.
func Render(in Input, s *Session) (View, error) {
	series, err := calculator.FilterAndBucket(in.Points, in.Range)
	if err != nil {
		return View{}, err
	}
	if s == nil {
		s = &Session{}
	}
	opts := in.DomainOptions
	if opts == (calculator.DomainOptions{}) {
		opts = calculator.DefaultDomainOptions()
	}

	v := View{
		TeamName:   in.TeamName,
		Range:      in.Range,
		RangeLabel: in.Range.Label(),
		Series:     series,
		Ticks:      make([]string, len(series)),
		Domain:     calculator.AxisDomain(series, in.PriceDomain, opts),
	}
	for i, p := range series {
		v.Ticks[i] = format.TickLabel(in.Range, p.Timestamp)
	}

	_, v.Hovering = s.Active()
	v.DisplayPrice = format.Placeholder
	v.DisplayTime = format.Placeholder
	if p, ok := s.Display(series); ok {
		v.Display = &p
		price := p.Price
		if !v.Hovering && in.Price != nil {
			price = *in.Price
		}
		v.DisplayPrice = format.ChartPrice(price)
		v.DisplayTime = format.DisplayTimestamp(in.Range, p.Timestamp, p.Time)
	} else if in.Price != nil {
		v.DisplayPrice = format.ChartPrice(*in.Price)
	}

	if raw, ok := s.Selection(); ok {
		if sel, ok := calculator.NormalizeSelection(series, raw); ok {
			v.Selection = &sel
			if change, ok := calculator.SelectionChange(sel); ok {
				v.Change = &change
				v.ChangeText = format.SignedCurrency(change.AbsoluteChange) +
					" (" + format.SignedPercent(change.PercentChange) + ")"
			}
		}
	}

	v.WeekChange = trailing(in.Points, in.WeekChangePercent, calculator.WeekWindow)
	v.MonthChange = trailing(in.Points, in.MonthChangePercent, calculator.MonthWindow)
	v.WeekText = format.PercentPtr(v.WeekChange)
	v.MonthText = format.PercentPtr(v.MonthChange)
	return v, nil
}

// trailing prefers an explicitly supplied change over one computed from the
// full, unbucketed history.
func trailing(points []model.DataPoint, override *float64, window time.Duration) *float64 {
	if override != nil {
		v := *override
		return &v
	}
	if c, ok := calculator.TrailingChange(points, window); ok {
		return &c
	}
	return nil
}

package model

import "time"

// InstrumentType distinguishes single teams from division ETFs.
type InstrumentType string

const (
	InstrumentTeam InstrumentType = "Team"
	InstrumentETF  InstrumentType = "ETF"
)

// TeamSnapshot is one market record as returned by the backend.
type TeamSnapshot struct {
	TeamName  string         `json:"team_name"`
	Value     float64        `json:"value"`
	Price     float64        `json:"price,omitempty"`
	Volume    float64        `json:"volume,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Type      InstrumentType `json:"type,omitempty"`
}

// MarketBoard holds the latest snapshot per instrument, split by type.
type MarketBoard struct {
	Teams     []TeamSnapshot `json:"teams"`
	ETFs      []TeamSnapshot `json:"etfs"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Team is a normalized, display-ready instrument.
type Team struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Abbreviation      string         `json:"abbreviation"`
	Price             float64        `json:"price"`
	Value             *float64       `json:"value,omitempty"`
	Volume            *float64       `json:"volume,omitempty"`
	Division          string         `json:"division"`
	Type              InstrumentType `json:"type"`
	Timestamp         time.Time      `json:"timestamp"`
	WeekChangePercent *float64       `json:"week_change_percent,omitempty"`
}

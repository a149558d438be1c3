package model

// GameSide is one team of a live game with its market move since kickoff.
type GameSide struct {
	TeamName      string  `json:"team_name"`
	Abbreviation  string  `json:"abbreviation"`
	Score         int     `json:"score"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

// LiveGame is an in-progress or just-finished game. Quarter is "Q1".."Q4"
// while playing and "Final" once the clock has run out.
type LiveGame struct {
	ID      string   `json:"id"`
	Home    GameSide `json:"home"`
	Away    GameSide `json:"away"`
	Quarter string   `json:"quarter"`
	Clock   string   `json:"clock"`
	Final   bool     `json:"final"`
}

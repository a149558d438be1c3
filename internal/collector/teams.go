package collector

import (
	"sort"
	"strings"
	"unicode"
)

// TeamInfo is static metadata for one franchise. Key is the name the
// market backend uses (city, disambiguated where two teams share one).
type TeamInfo struct {
	Key          string
	FullName     string
	Abbreviation string
	Division     string
}

// Divisions in display order. Division names double as ETF names.
var Divisions = []string{
	"AFC East", "AFC North", "AFC South", "AFC West",
	"NFC East", "NFC North", "NFC South", "NFC West",
}

var teamTable = []TeamInfo{
	{"Baltimore", "Baltimore Ravens", "BAL", "AFC North"},
	{"Cincinnati", "Cincinnati Bengals", "CIN", "AFC North"},
	{"Cleveland", "Cleveland Browns", "CLE", "AFC North"},
	{"Pittsburgh", "Pittsburgh Steelers", "PIT", "AFC North"},
	{"Houston", "Houston Texans", "HOU", "AFC South"},
	{"Indianapolis", "Indianapolis Colts", "IND", "AFC South"},
	{"Jacksonville", "Jacksonville Jaguars", "JAX", "AFC South"},
	{"Tennessee", "Tennessee Titans", "TEN", "AFC South"},
	{"Buffalo", "Buffalo Bills", "BUF", "AFC East"},
	{"Miami", "Miami Dolphins", "MIA", "AFC East"},
	{"New England", "New England Patriots", "NE", "AFC East"},
	{"New York J", "New York Jets", "NYJ", "AFC East"},
	{"Denver", "Denver Broncos", "DEN", "AFC West"},
	{"Kansas City", "Kansas City Chiefs", "KC", "AFC West"},
	{"Las Vegas", "Las Vegas Raiders", "LV", "AFC West"},
	{"Los Angeles C", "Los Angeles Chargers", "LAC", "AFC West"},
	{"Chicago", "Chicago Bears", "CHI", "NFC North"},
	{"Detroit", "Detroit Lions", "DET", "NFC North"},
	{"Green Bay", "Green Bay Packers", "GB", "NFC North"},
	{"Minnesota", "Minnesota Vikings", "MIN", "NFC North"},
	{"Atlanta", "Atlanta Falcons", "ATL", "NFC South"},
	{"Carolina", "Carolina Panthers", "CAR", "NFC South"},
	{"New Orleans", "New Orleans Saints", "NO", "NFC South"},
	{"Tampa Bay", "Tampa Bay Buccaneers", "TB", "NFC South"},
	{"Dallas", "Dallas Cowboys", "DAL", "NFC East"},
	{"New York G", "New York Giants", "NYG", "NFC East"},
	{"Philadelphia", "Philadelphia Eagles", "PHI", "NFC East"},
	{"Washington", "Washington Commanders", "WAS", "NFC East"},
	{"Arizona", "Arizona Cardinals", "ARI", "NFC West"},
	{"Los Angeles R", "Los Angeles Rams", "LAR", "NFC West"},
	{"San Francisco", "San Francisco 49ers", "SF", "NFC West"},
	{"Seattle", "Seattle Seahawks", "SEA", "NFC West"},
}

// byKeyLength lists teams longest key first so prefix matching prefers
// "New York J" over a shorter key.
var byKeyLength = func() []TeamInfo {
	out := append([]TeamInfo(nil), teamTable...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Key) > len(out[j].Key) })
	return out
}()

// Teams returns the metadata table in division order.
func Teams() []TeamInfo {
	return append([]TeamInfo(nil), teamTable...)
}

// FindTeam resolves a backend key, full name or abbreviation.
func FindTeam(name string) (TeamInfo, bool) {
	n := strings.TrimSpace(name)
	for _, t := range teamTable {
		if strings.EqualFold(t.Key, n) || strings.EqualFold(t.FullName, n) || strings.EqualFold(t.Abbreviation, n) {
			return t, true
		}
	}
	lower := strings.ToLower(n)
	for _, t := range byKeyLength {
		if strings.HasPrefix(lower, strings.ToLower(t.Key)) {
			return t, true
		}
	}
	return TeamInfo{}, false
}

// IsDivision reports whether name is a division ETF.
func IsDivision(name string) bool {
	for _, d := range Divisions {
		if d == name {
			return true
		}
	}
	return false
}

// DivisionMembers returns the backend keys of the teams in division.
func DivisionMembers(division string) []string {
	var out []string
	for _, t := range teamTable {
		if t.Division == division {
			out = append(out, t.Key)
		}
	}
	return out
}

// Abbreviation returns the ticker for name. Unknown names fall back to
// up to three initials.
func Abbreviation(name string) string {
	if t, ok := FindTeam(name); ok {
		return t.Abbreviation
	}
	if IsDivision(name) {
		conf, div, _ := strings.Cut(name, " ")
		return conf + div[:1]
	}

	var initials []rune
	for _, part := range strings.Fields(name) {
		r := []rune(part)
		initials = append(initials, unicode.ToUpper(r[0]))
	}
	if len(initials) > 3 {
		initials = initials[:3]
	}
	if len(initials) == 0 {
		return "NFL"
	}
	return string(initials)
}

// Division returns the division of name, "Unknown" when it is not a team.
func Division(name string) string {
	if t, ok := FindTeam(name); ok {
		return t.Division
	}
	if IsDivision(name) {
		return name
	}
	return "Unknown"
}

// Package screener filters and ranks the team board.
package screener

import (
	"math"
	"sort"
	"strings"

	"GridironMarket/internal/model"
)

// AllDivisions disables the division filter.
const AllDivisions = "All"

// Filter keeps teams whose name contains search (case-insensitive) and
// whose division matches. An empty division behaves like AllDivisions.
func Filter(teams []model.Team, search, division string) []model.Team {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		if needle != "" && !strings.Contains(strings.ToLower(t.Name), needle) {
			continue
		}
		if division != "" && division != AllDivisions && t.Division != division {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TopByVolume returns the n busiest teams; missing volume counts as zero.
func TopByVolume(teams []model.Team, n int) []model.Team {
	sorted := append([]model.Team(nil), teams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return volume(sorted[i]) > volume(sorted[j])
	})
	return head(sorted, n)
}

func volume(t model.Team) float64 {
	if t.Volume == nil {
		return 0
	}
	return *t.Volume
}

// Trending returns the n teams with the largest absolute week change.
// Teams without a week change are skipped.
func Trending(teams []model.Team, n int) []model.Team {
	var moved []model.Team
	for _, t := range teams {
		if t.WeekChangePercent != nil && !math.IsNaN(*t.WeekChangePercent) {
			moved = append(moved, t)
		}
	}
	sort.SliceStable(moved, func(i, j int) bool {
		return math.Abs(*moved[i].WeekChangePercent) > math.Abs(*moved[j].WeekChangePercent)
	})
	return head(moved, n)
}

func head(teams []model.Team, n int) []model.Team {
	if n >= 0 && len(teams) > n {
		return teams[:n]
	}
	return teams
}
